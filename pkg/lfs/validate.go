package lfs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrValidation is returned when a request body does not match its
// protocol type.
var ErrValidation = errors.New("validation error")

// ValidationError describes which field of a request body failed to
// validate.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements error.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

// Unwrap returns ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// object is a decoded JSON object whose members are still raw.
type object map[string]json.RawMessage

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeObject decodes raw as a JSON object. Anything else, including null,
// is rejected.
func decodeObject(field string, raw []byte) (object, error) {
	var o object
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, invalid(field, "expected object")
	}
	if o == nil {
		return nil, invalid(field, "expected object, got null")
	}
	return o, nil
}

// required decodes the member key of o into v. The member must be present
// and not null.
func (o object) required(parent, key string, v interface{}) error {
	raw, ok := o[key]
	if !ok {
		return invalid(join(parent, key), "missing")
	}
	return decodeValue(join(parent, key), raw, v)
}

// optional decodes the member key of o into v when present. An explicit null
// is not an accepted shape.
func (o object) optional(parent, key string, v interface{}) (bool, error) {
	raw, ok := o[key]
	if !ok {
		return false, nil
	}
	return true, decodeValue(join(parent, key), raw, v)
}

// extra returns the members of o that are not in known.
func (o object) extra(known ...string) map[string]json.RawMessage {
	var extra map[string]json.RawMessage
	for k, v := range o {
		var isKnown bool
		for _, name := range known {
			if k == name {
				isKnown = true
				break
			}
		}
		if isKnown {
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[k] = v
	}
	return extra
}

func decodeValue(field string, raw json.RawMessage, v interface{}) error {
	if isNull(raw) {
		return invalid(field, "unexpected null")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return invalid(field, "expected %s, got %s", typeErr.Type, typeErr.Value)
		}
		return invalid(field, "%v", err)
	}
	return nil
}

func join(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// DecodeBatchRequest parses and type-checks a batch request body. Every
// declared field must have its declared type, operation must be one of the
// known operations and optional members, when present, must have their
// declared shape. Unknown members are kept in BatchRequest.Extra.
func DecodeBatchRequest(body []byte) (*BatchRequest, error) {
	o, err := decodeObject("", body)
	if err != nil {
		return nil, err
	}

	var req BatchRequest
	if err := o.required("", "operation", &req.Operation); err != nil {
		return nil, err
	}
	if !IsOperation(req.Operation) {
		return nil, invalid("operation", "unknown operation %q", req.Operation)
	}

	var objects []json.RawMessage
	if err := o.required("", "objects", &objects); err != nil {
		return nil, err
	}
	req.Objects = make([]Pointer, 0, len(objects))
	for i, raw := range objects {
		p, err := decodePointer(fmt.Sprintf("objects[%d]", i), raw)
		if err != nil {
			return nil, err
		}
		req.Objects = append(req.Objects, p)
	}

	var ref json.RawMessage
	if ok, err := o.optional("", "ref", &ref); err != nil {
		return nil, err
	} else if ok {
		r, err := decodeObject("ref", ref)
		if err != nil {
			return nil, err
		}
		req.Ref = &Reference{}
		if err := r.required("ref", "name", &req.Ref.Name); err != nil {
			return nil, err
		}
	}

	var transfers []json.RawMessage
	if ok, err := o.optional("", "transfers", &transfers); err != nil {
		return nil, err
	} else if ok {
		req.Transfers = make([]string, 0, len(transfers))
		for i, raw := range transfers {
			var t string
			if err := decodeValue(fmt.Sprintf("transfers[%d]", i), raw, &t); err != nil {
				return nil, err
			}
			req.Transfers = append(req.Transfers, t)
		}
	}

	req.Extra = o.extra("operation", "objects", "ref", "transfers")
	return &req, nil
}

func decodePointer(field string, raw json.RawMessage) (Pointer, error) {
	var p Pointer
	o, err := decodeObject(field, raw)
	if err != nil {
		return p, err
	}
	if err := o.required(field, "oid", &p.Oid); err != nil {
		return p, err
	}
	if err := o.required(field, "size", &p.Size); err != nil {
		return p, err
	}
	return p, nil
}

// DecodePasswordRequest parses and type-checks a password update body.
func DecodePasswordRequest(body []byte) (*PasswordRequest, error) {
	o, err := decodeObject("", body)
	if err != nil {
		return nil, err
	}

	var req PasswordRequest
	if err := o.required("", "password", &req.Password); err != nil {
		return nil, err
	}

	req.Extra = o.extra("password")
	return &req, nil
}
