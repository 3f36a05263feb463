package feeders

import (
	"errors"
	"fmt"
)

// Static error definitions for feeders
var (
	ErrTargetNotStructPointer = errors.New("target must be a pointer to a struct")
	ErrFieldCannotBeSet       = errors.New("field cannot be set")
	ErrUnsupportedFieldType   = errors.New("unsupported field type")
	ErrTypeConversion         = errors.New("type conversion error")
	ErrFileRead               = errors.New("failed to read config file")
	ErrInvalidJSON            = errors.New("invalid JSON document")
)

func wrapFileError(kind, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrFileRead, kind, path, err)
}

func wrapConversionError(fieldPath string, raw string, err error) error {
	return fmt.Errorf("%w: %s=%q: %w", ErrTypeConversion, fieldPath, raw, err)
}
