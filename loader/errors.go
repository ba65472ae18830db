package loader

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ParseError reports a document that could not be normalized. Err may aggregate
// several problems; Problems lists them individually.
type ParseError struct {
	Document string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Document, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Problems returns every individual cause collected while parsing.
func (e *ParseError) Problems() []error {
	return multierr.Errors(e.Err)
}

// ConversionError reports an index beta string with no leading number.
type ConversionError struct {
	Value string
	Err   error
}

func (e *ConversionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("no numeric beta in %q", e.Value)
	}
	return fmt.Sprintf("no numeric beta in %q: %v", e.Value, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// MissingFileError reports that an auto-discovered document does not exist.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

func IsMissingFile(err error) bool {
	var me *MissingFileError
	return errors.As(err, &me)
}
