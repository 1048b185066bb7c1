// Package importer picks the statement decoder for an uploaded file. Content
// signatures are checked first and the file extension is only a fallback,
// so a renamed file is still recognized and a file with a statement
// extension but foreign content is rejected by its decoder.
package importer

import (
	"path/filepath"
	"strings"

	"github.com/MrJamesThe3rd/conciliar/internal/statement"
)

// Format names a registered statement decoder.
type Format string

const (
	FormatOFX Format = "ofx"
	FormatCGD Format = "cgd"
)

// Detect returns the first decoder whose signature matches data, falling
// back to the file extension. It returns statement.ErrUnrecognizedFormat
// when neither identifies the file.
func Detect(decoders []statement.Decoder, filename string, data []byte) (statement.Decoder, error) {
	for _, d := range decoders {
		if d.Match(data) {
			return d, nil
		}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return nil, statement.ErrUnrecognizedFormat
	}

	for _, d := range decoders {
		for _, e := range d.Extensions() {
			if ext == e {
				return d, nil
			}
		}
	}

	return nil, statement.ErrUnrecognizedFormat
}
