package importer

import (
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/conciliar/internal/statement"
	"github.com/MrJamesThe3rd/conciliar/internal/statement/cgd"
	"github.com/MrJamesThe3rd/conciliar/internal/statement/ofx"
)

type Service struct {
	decoders []statement.Decoder
}

// NewService returns an importer with the built-in decoders. More specific
// signatures come first.
func NewService() *Service {
	return NewServiceWith(ofx.NewParser(), cgd.NewParser())
}

func NewServiceWith(decoders ...statement.Decoder) *Service {
	return &Service{decoders: decoders}
}

// Recognized reports whether the file is a supported statement, without
// parsing it.
func (s *Service) Recognized(filename string, data []byte) bool {
	_, err := Detect(s.decoders, filename, data)
	return err == nil
}

// Format returns the decoder name for the file.
func (s *Service) Format(filename string, data []byte) (Format, error) {
	d, err := Detect(s.decoders, filename, data)
	if err != nil {
		return "", err
	}

	return Format(d.Name()), nil
}

// Import detects the format and parses the whole file. Either a complete
// statement or an error is returned.
func (s *Service) Import(filename string, data []byte) (*statement.Statement, error) {
	d, err := Detect(s.decoders, filename, data)
	if err != nil {
		return nil, &statement.ParseError{Kind: statement.ErrUnrecognizedFormat, Value: filename}
	}

	st, err := d.Parse(data)
	if err != nil {
		var perr *statement.ParseError
		if errors.As(err, &perr) {
			return nil, err
		}

		return nil, fmt.Errorf("parsing %s statement: %w", d.Name(), err)
	}

	return st, nil
}
