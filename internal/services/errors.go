package services

import "strings"

// MissingFieldsError reports which identity fields were absent from a
// submission. No write is attempted when it is returned.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}
