package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSeparator is returned when the file cannot be parsed with any candidate separator.
var ErrNoSeparator = errors.New("no separator produced a readable table")

// MissingColumnError indicates a required column is absent from the header.
type MissingColumnError struct {
	Column  string
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column %q not found (have %s)", e.Column, strings.Join(e.Columns, ", "))
}

// InsufficientDataError reports that a stage was skipped for lack of data.
type InsufficientDataError struct {
	Stage string
	What  string
	Need  int
	Have  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: need at least %d %s, have %d", e.Stage, e.Need, e.What, e.Have)
}
