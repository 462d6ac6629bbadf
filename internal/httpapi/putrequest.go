package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ErrMalformedRequest and ErrBadParam distinguish the two ways a /put body
// can be rejected: a schema mismatch (missing/misordered/extra fields, bad
// JSON syntax) is MalformedRequest ("Bad Put"); a value present in the right
// slot but not decodable as its expected type is BadParam ("Bad Param").
var (
	ErrMalformedRequest = errors.New("malformed put request")
	ErrBadParam         = errors.New("bad param")
)

// putFields is the exact, ordered field list required for POST /put. Field
// *order* is part of the schema here, not just presence, so the body is
// parsed token-by-token rather than with encoding/json's struct-tag binding.
var putFields = []string{"uid", "name", "exp_pers", "active", "exp_gang"}

// PutRequest is the decoded, ordered body of POST /put.
type PutRequest struct {
	UID     uint32
	Name    string
	ExpPers uint32
	Active  uint32
	ExpGang uint32
}

// ParsePutRequest decodes body as a JSON object whose keys must appear,
// unquoted case-sensitive, in exactly the order of putFields, with no
// additional fields and no trailing JSON content. json.Number is used
// throughout so integer overflow/fractional values are caught explicitly
// rather than silently rounded by a float64 token.
func ParsePutRequest(body io.Reader) (*PutRequest, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: expected JSON object", ErrMalformedRequest)
	}

	req := &PutRequest{}
	for _, field := range putFields {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: missing field %q: %v", ErrMalformedRequest, field, err)
		}
		key, ok := keyTok.(string)
		if !ok || key != field {
			return nil, fmt.Errorf("%w: expected field %q next, got %v", ErrMalformedRequest, field, keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: reading value for %q: %v", ErrMalformedRequest, field, err)
		}

		if field == "name" {
			s, ok := valTok.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %q must be a string", ErrBadParam, field)
			}
			req.Name = s
			continue
		}

		num, ok := valTok.(json.Number)
		if !ok {
			return nil, fmt.Errorf("%w: %q must be a number", ErrBadParam, field)
		}
		v, err := strconv.ParseUint(num.String(), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q out of range for uint32: %v", ErrBadParam, field, err)
		}

		switch field {
		case "uid":
			req.UID = uint32(v)
		case "exp_pers":
			req.ExpPers = uint32(v)
		case "active":
			req.Active = uint32(v)
		case "exp_gang":
			req.ExpGang = uint32(v)
		}
	}

	closeTok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	if d, ok := closeTok.(json.Delim); !ok || d != '}' {
		// Either an extra field follows, or the object is otherwise malformed.
		return nil, fmt.Errorf("%w: unexpected extra field", ErrMalformedRequest)
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing content after object", ErrMalformedRequest)
	}

	return req, nil
}
