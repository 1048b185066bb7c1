package alias

import "errors"

var (
	ErrInvalidMapping = errors.New("invalid mapping")
	ErrNotFound       = errors.New("mapping not found")
)
