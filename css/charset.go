package css

import (
	"bytes"
	"fmt"
	"regexp"

	"golang.org/x/text/encoding/ianaindex"
)

var (
	utf8BOM        = []byte{0xEF, 0xBB, 0xBF}
	charsetPattern = regexp.MustCompile(`^@charset\s+"([^"]+)"\s*;`)
)

// Decode returns stylesheet data converted to UTF-8. Encoding is taken from
// leading @charset rule, data without one is expected to be UTF-8 already.
// Byte order mark is dropped.
func Decode(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	m := charsetPattern.FindSubmatch(data)
	if m == nil {
		return data, nil
	}
	name := string(m[1])

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown stylesheet charset %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported stylesheet charset %q", name)
	}
	if canonical, err := ianaindex.IANA.Name(enc); err == nil && canonical == "UTF-8" {
		return data, nil
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("unable to decode stylesheet from %q: %w", name, err)
	}
	return out, nil
}

// IsUTF8 reports whether charset name denotes UTF-8.
func IsUTF8(name string) bool {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return false
	}
	canonical, err := ianaindex.IANA.Name(enc)
	return err == nil && canonical == "UTF-8"
}
