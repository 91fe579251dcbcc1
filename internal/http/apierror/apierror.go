// Package apierror reshapes validation failures into a flat
// {"field": ["message", ...]} body with status 400.
//
// Install replaces huma.NewError so request validation performed by huma
// produces the same shape as validation errors returned by handlers. Any
// other error is built by huma's default constructor.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"

	"github.com/openfoodfacts/open-prices/internal/validation"
)

// NonFieldErrors keys messages that do not belong to a single field.
const NonFieldErrors = validation.NonFieldErrors

// locationPrefixes are stripped from huma error locations.
var locationPrefixes = []string{"body.", "query.", "path.", "header.", "cookie."}

// ValidationError maps a field name to its messages.
type ValidationError map[string][]string

// Error implements error.
func (e ValidationError) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e[k], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// GetStatus implements huma.StatusError.
func (e ValidationError) GetStatus() int {
	return http.StatusBadRequest
}

// Add appends msg to the messages of field.
func (e ValidationError) Add(field, msg string) {
	if field == "" {
		field = NonFieldErrors
	}
	e[field] = append(e[field], msg)
}

// Err returns e, or nil when no message was added.
func (e ValidationError) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// FieldErrorer is implemented by errors that carry per-field messages,
// such as validation.Errors and lookup.Errors.
type FieldErrorer interface {
	error
	FieldErrors() map[string][]string
}

// From converts err into a ValidationError when it carries field messages.
// Other errors are returned unchanged.
func From(err error) error {
	if err == nil {
		return nil
	}
	if ve, ok := asValidation(err); ok {
		return ve
	}
	return err
}

func asValidation(err error) (ValidationError, bool) {
	var ve ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	var fe FieldErrorer
	if errors.As(err, &fe) {
		out := ValidationError{}
		for k, msgs := range fe.FieldErrors() {
			out[k] = append([]string(nil), msgs...)
		}
		return out, true
	}
	return nil, false
}

var (
	defaultNewError = huma.NewError
	installOnce     sync.Once
)

// Handle builds the error written for status, msg and errs.
//
// A validation error among errs is returned as is. A huma request
// validation failure (400 or 422 with error details) is converted to a
// ValidationError keyed by the detail location. Everything else goes to
// huma's default constructor.
func Handle(status int, msg string, errs ...error) huma.StatusError {
	for _, err := range errs {
		if err == nil {
			continue
		}
		if ve, ok := asValidation(err); ok {
			return ve
		}
	}

	if status == http.StatusUnprocessableEntity || status == http.StatusBadRequest {
		if ve := fromDetails(errs); ve != nil {
			return ve
		}
	}

	return defaultNewError(status, msg, errs...)
}

func fromDetails(errs []error) ValidationError {
	ve := ValidationError{}
	for _, err := range errs {
		var d huma.ErrorDetailer
		if err == nil || !errors.As(err, &d) {
			return nil
		}
		detail := d.ErrorDetail()
		ve.Add(fieldName(detail.Location), detail.Message)
	}
	if len(ve) == 0 {
		return nil
	}
	return ve
}

func fieldName(location string) string {
	for _, p := range locationPrefixes {
		if strings.HasPrefix(location, p) {
			return strings.TrimPrefix(location, p)
		}
	}
	switch location {
	case "body", "query", "path", "header", "cookie":
		return NonFieldErrors
	}
	return location
}

// Install makes Handle the error constructor used by huma. It is safe to
// call more than once.
func Install() {
	installOnce.Do(func() {
		huma.NewError = Handle
	})
}
