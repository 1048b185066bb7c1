package encoding

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// sniffLen bounds how much of the input is handed to chardet.
const sniffLen = 4096

// ToUTF8 decodes data to UTF-8.
//
// Detection order:
//  1. BOM (UTF-8 BOM is stripped; UTF-16 LE/BE is decoded)
//  2. declared single-byte charset, when the format carries one (OFX CHARSET)
//  3. valid UTF-8 is returned as-is
//  4. heuristic detection via chardet
//  5. fallback to Windows-1252
func ToUTF8(data []byte, declared string) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], nil
	case bytes.HasPrefix(data, bomUTF16LE):
		return decode(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), data)
	case bytes.HasPrefix(data, bomUTF16BE):
		return decode(unicode.UTF16(unicode.BigEndian, unicode.UseBOM), data)
	}

	// A UTF-8 declaration is only trusted when the bytes are valid UTF-8.
	if enc, ok := byName(declared); ok && enc != nil {
		return decode(enc, data)
	}

	if utf8.Valid(data) {
		return data, nil
	}

	sample := data
	if len(sample) > sniffLen {
		sample = sample[:sniffLen]
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err == nil {
		if enc, ok := byName(result.Charset); ok {
			if enc == nil {
				return data, nil
			}

			return decode(enc, data)
		}
	}

	return decode(charmap.Windows1252, data)
}

// byName maps a charset label to an encoding. A nil encoding with ok=true
// means the content is already UTF-8.
func byName(name string) (encoding.Encoding, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "UTF-8", "UTF8":
		return nil, true
	case "1252", "WINDOWS-1252", "CP1252", "ISO-8859-1", "LATIN1":
		return charmap.Windows1252, true
	case "ISO-8859-15":
		return charmap.ISO8859_15, true
	case "ISO-8859-9":
		return charmap.ISO8859_9, true
	}

	return nil, false
}

func decode(enc encoding.Encoding, data []byte) ([]byte, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decoding input: %w", err)
	}

	return out, nil
}
