package merger

import (
	"errors"
	"fmt"
)

// ErrInvalidDocument indicates an input blob is not a readable xlsx workbook.
var ErrInvalidDocument = errors.New("invalid xlsx document")

// ErrMissingInput indicates no input files or no output filename were given.
var ErrMissingInput = errors.New("no input files or output filename")

// DocumentError reports which input failed to parse.
type DocumentError struct {
	Index int
	Name  string
	Err   error
}

func (e *DocumentError) Error() string {
	name := e.Name
	if name == "" {
		name = fmt.Sprintf("input #%d", e.Index+1)
	}
	return fmt.Sprintf("%s: %v: %v", name, ErrInvalidDocument, e.Err)
}

// Is makes errors.Is(err, ErrInvalidDocument) hold for every DocumentError.
func (e *DocumentError) Is(target error) bool {
	return target == ErrInvalidDocument
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

func newDocumentError(index int, name string, err error) *DocumentError {
	return &DocumentError{
		Index: index,
		Name:  name,
		Err:   err,
	}
}
