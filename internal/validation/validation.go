// Package validation collects input problems keyed by field name.
//
// Errors carries no transport detail; the HTTP layer renders it as a 400
// response through its FieldErrors method.
package validation

import (
	"fmt"
	"sort"
	"strings"
)

// NonFieldErrors keys messages that do not belong to a single field.
const NonFieldErrors = "non_field_errors"

// Errors maps a field name to its messages.
type Errors map[string][]string

// Error implements error.
func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e[k], " ")))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// FieldErrors returns the messages keyed by field.
func (e Errors) FieldErrors() map[string][]string {
	return e
}

// Add appends msg to the messages of field. An empty field files the
// message under NonFieldErrors.
func (e Errors) Add(field, msg string) {
	if field == "" {
		field = NonFieldErrors
	}
	e[field] = append(e[field], msg)
}

// Err returns e, or nil when no message was added.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
