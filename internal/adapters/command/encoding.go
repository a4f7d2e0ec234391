package command

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// PreferredEncoding returns the platform's preferred text encoding for
// subprocess output, falling back to UTF-8 for unknown charsets.
func PreferredEncoding() encoding.Encoding {
	return encodingFor(preferredCharset())
}

func encodingFor(charset string) encoding.Encoding {
	if charset == "" {
		return unicode.UTF8
	}
	enc, err := htmlindex.Get(charset)
	if err != nil || enc == nil {
		return unicode.UTF8
	}
	return enc
}
