package auth

import (
	"encoding/base64"
	"strings"
	"unicode"
)

// Identity is the caller of a request.
type Identity struct {
	// Anonymous is true when the request carried no Authorization header.
	Anonymous bool

	// ID and Secret are the presented credentials. Either may be empty.
	ID     string
	Secret string

	// Authorized becomes true once the credentials have been verified.
	Authorized bool
}

// ParseAuthorization extracts an Identity from an Authorization header
// value. It never fails: an absent header is anonymous and an undecodable
// one yields empty credentials.
//
// An optional "Basic" scheme followed by a single whitespace character is
// stripped, the remainder is base64 decoded and split at the first colon.
func ParseAuthorization(header string) Identity {
	if header == "" {
		return Identity{Anonymous: true}
	}

	token := header
	if len(token) > len("Basic") && strings.HasPrefix(token, "Basic") {
		if r := rune(token[len("Basic")]); r < unicode.MaxASCII && unicode.IsSpace(r) {
			token = token[len("Basic")+1:]
		}
	}

	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(token)
		if err != nil {
			return Identity{}
		}
	}

	id, secret, _ := strings.Cut(string(decoded), ":")
	return Identity{ID: id, Secret: secret}
}
