package apierror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/go-cmp/cmp"

	"github.com/openfoodfacts/open-prices/internal/validation"
)

type fieldErrs map[string][]string

func (f fieldErrs) Error() string                   { return "field errors" }
func (f fieldErrs) FieldErrors() map[string][]string { return f }

// ========================================
// Handle
// ========================================

func TestHandle_ValidationErrorPassesThrough(t *testing.T) {
	ve := ValidationError{"name": {"required"}}

	got := Handle(http.StatusInternalServerError, "boom", ve)
	if got.GetStatus() != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", got.GetStatus())
	}

	body, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(body) != `{"name":["required"]}` {
		t.Errorf("body = %s, want {\"name\":[\"required\"]}", body)
	}
}

func TestHandle_WrappedValidationError(t *testing.T) {
	err := fmt.Errorf("creating price: %w", ValidationError{"price": {"must be positive"}})

	got, ok := Handle(http.StatusInternalServerError, "x", err).(ValidationError)
	if !ok {
		t.Fatalf("Handle() did not return a ValidationError")
	}
	if diff := cmp.Diff(ValidationError{"price": {"must be positive"}}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestHandle_ValidationErrors(t *testing.T) {
	errs := validation.Errors{}
	errs.Add("", "One of product_code or category_tag must be set.")
	err := fmt.Errorf("create price: %w", errs.Err())

	got := Handle(http.StatusInternalServerError, "x", err)
	if got.GetStatus() != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", got.GetStatus())
	}
	want := ValidationError{NonFieldErrors: {"One of product_code or category_tag must be set."}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestHandle_FieldErrorer(t *testing.T) {
	got := Handle(http.StatusInternalServerError, "x", fieldErrs{"price__gt": {"not a number"}})
	if diff := cmp.Diff(ValidationError{"price__gt": {"not a number"}}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestHandle_ErrorDetails(t *testing.T) {
	got := Handle(http.StatusUnprocessableEntity, "validation failed",
		&huma.ErrorDetail{Location: "body.currency", Message: "expected length <= 3"},
		&huma.ErrorDetail{Location: "query.size", Message: "expected number >= 1"},
		&huma.ErrorDetail{Location: "body.currency", Message: "unknown currency"},
		&huma.ErrorDetail{Location: "body", Message: "expected required property price to be present"},
	)

	want := ValidationError{
		"currency":     {"expected length <= 3", "unknown currency"},
		"size":         {"expected number >= 1"},
		NonFieldErrors: {"expected required property price to be present"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if got.GetStatus() != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", got.GetStatus())
	}
}

func TestHandle_OtherErrorsDelegate(t *testing.T) {
	tests := []struct {
		name   string
		status int
		errs   []error
	}{
		{"not found", http.StatusNotFound, nil},
		{"internal", http.StatusInternalServerError, []error{errors.New("db down")}},
		{"mixed details", http.StatusUnprocessableEntity, []error{&huma.ErrorDetail{Location: "body.x"}, errors.New("plain")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Handle(tt.status, "message", tt.errs...)
			if _, ok := got.(ValidationError); ok {
				t.Fatal("Handle() should delegate to the default constructor")
			}
			if got.GetStatus() != tt.status {
				t.Errorf("status = %d, want %d", got.GetStatus(), tt.status)
			}
			if _, ok := got.(*huma.ErrorModel); !ok {
				t.Errorf("Handle() = %T, want *huma.ErrorModel", got)
			}
		})
	}
}

// ========================================
// ValidationError helpers
// ========================================

func TestValidationError_AddAndErr(t *testing.T) {
	ve := ValidationError{}
	if ve.Err() != nil {
		t.Error("empty ValidationError should yield nil")
	}

	ve.Add("", "either product_code or category_tag is required")
	ve.Add("price", "must be greater than 0")
	if ve.Err() == nil {
		t.Fatal("Err() should be non-nil")
	}
	if len(ve[NonFieldErrors]) != 1 {
		t.Errorf("non_field_errors = %v", ve[NonFieldErrors])
	}
}

func TestFrom(t *testing.T) {
	if From(nil) != nil {
		t.Error("From(nil) should be nil")
	}
	plain := errors.New("plain")
	if From(plain) != plain {
		t.Error("From() should pass other errors through")
	}
	if _, ok := From(fieldErrs{"a": {"b"}}).(ValidationError); !ok {
		t.Error("From() should convert field errors")
	}
}

// ========================================
// End to end through huma
// ========================================

type echoInput struct {
	Size int `query:"size" minimum:"1" default:"10"`
	Body struct {
		Name string `json:"name" minLength:"2"`
	}
}

type echoOutput struct {
	Body struct {
		Name string `json:"name"`
	}
}

func TestInstall_EndToEnd(t *testing.T) {
	Install()
	Install()

	_, api := humatest.New(t)
	huma.Register(api, huma.Operation{
		OperationID: "echo",
		Method:      http.MethodPost,
		Path:        "/echo",
	}, func(ctx context.Context, in *echoInput) (*echoOutput, error) {
		if in.Body.Name == "no" {
			return nil, ValidationError{"name": {"required"}}
		}
		if in.Body.Name == "boom" {
			return nil, huma.Error500InternalServerError("boom")
		}
		out := &echoOutput{}
		out.Body.Name = in.Body.Name
		return out, nil
	})

	tests := []struct {
		name       string
		path       string
		body       map[string]any
		wantStatus int
		wantBody   map[string][]string
	}{
		{"handler validation", "/echo", map[string]any{"name": "no"}, http.StatusBadRequest, map[string][]string{"name": {"required"}}},
		{"request validation", "/echo?size=0", map[string]any{"name": "ok"}, http.StatusBadRequest, nil},
		{"success", "/echo", map[string]any{"name": "ok"}, http.StatusOK, nil},
		{"other error", "/echo", map[string]any{"name": "boom"}, http.StatusInternalServerError, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := api.Post(tt.path, tt.body)
			if resp.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", resp.Code, tt.wantStatus, resp.Body.String())
			}
			if tt.wantStatus != http.StatusBadRequest {
				return
			}
			var got map[string][]string
			if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
				t.Fatalf("400 body is not a field map: %v (%s)", err, resp.Body.String())
			}
			if tt.wantBody != nil {
				if diff := cmp.Diff(tt.wantBody, got); diff != "" {
					t.Errorf("body mismatch (-want +got):\n%s", diff)
				}
			} else if len(got["size"]) == 0 {
				t.Errorf("body = %v, want messages for size", got)
			}
		})
	}
}
