package user

import (
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestReadPassword(t *testing.T) {
	is := is.New(t)

	p, err := readPassword("flag", strings.NewReader("stdin\n"))
	is.NoErr(err)
	is.Equal(p, "flag")

	p, err = readPassword("", strings.NewReader("s3cret\r\nignored\n"))
	is.NoErr(err)
	is.Equal(p, "s3cret")

	p, err = readPassword("", strings.NewReader("no-newline"))
	is.NoErr(err)
	is.Equal(p, "no-newline")

	_, err = readPassword("", strings.NewReader("\n"))
	is.True(err != nil) // empty password
}
