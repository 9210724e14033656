package body

import (
	"mime"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// toUTF8 transcodes data from the charset declared in contentType. A
// missing, unparsable or UTF-8 declaration leaves data untouched.
func toUTF8(data []byte, contentType string) ([]byte, error) {
	if contentType == "" {
		return data, nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return data, nil
	}
	cs := strings.ToLower(strings.TrimSpace(params["charset"]))
	switch cs {
	case "", "utf-8", "utf8", "us-ascii":
		return data, nil
	}

	enc, err := htmlindex.Get(cs)
	if err != nil {
		return nil, &DecodingError{Stage: "charset", Value: cs, Err: err}
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, &DecodingError{Stage: "charset", Value: cs, Err: err}
	}
	return out, nil
}
