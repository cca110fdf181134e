package csvio

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// encodings maps caller-facing encoding names to x/text codecs. Names
// are matched case-insensitively with dashes and underscores ignored.
//
// utf-8 maps to nil: no transform needed.
var encodings = map[string]encoding.Encoding{
	"utf8":        nil,
	"utf16le":     unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"utf16be":     unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
	"latin1":      charmap.ISO8859_1,
	"iso88591":    charmap.ISO8859_1,
	"iso88592":    charmap.ISO8859_2,
	"iso885915":   charmap.ISO8859_15,
	"windows1250": charmap.Windows1250,
	"windows1252": charmap.Windows1252,
	"cp1250":      charmap.Windows1250,
	"cp1252":      charmap.Windows1252,
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	key := strings.ToLower(name)
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	enc, ok := encodings[key]
	if !ok {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc, nil
}

// DetectEncoding guesses the encoding of raw input bytes when the
// caller did not specify one.
//
// The heuristic is deliberately small: BOMs win, then UTF-8 validity,
// then windows-1252 as the byte-preserving fallback (every byte
// sequence is valid 1252, so detection never fails).
func DetectEncoding(sample []byte) string {
	switch {
	case bytes.HasPrefix(sample, []byte{0xFF, 0xFE}):
		return "utf-16le"
	case bytes.HasPrefix(sample, []byte{0xFE, 0xFF}):
		return "utf-16be"
	case bytes.HasPrefix(sample, []byte{0xEF, 0xBB, 0xBF}):
		return "utf-8"
	case utf8.Valid(sample):
		return "utf-8"
	default:
		return "windows-1252"
	}
}
