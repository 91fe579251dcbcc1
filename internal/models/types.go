// Package models contains domain models and utility types.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tags is a list of taxonomy tags (e.g. "en:organic").
//
// It unmarshals from a JSON array or from a comma separated string, and
// scans from the JSON text the repositories select for array columns.
// A nil Tags marshals as an empty array.
type Tags []string

// MarshalJSON implements json.Marshaler for Tags.
func (t Tags) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

// UnmarshalJSON implements json.Unmarshaler for Tags.
// It accepts both arrays and comma separated strings.
func (t *Tags) UnmarshalJSON(data []byte) error {
	// Try to unmarshal as an array first
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = normalizeTags(list)
		return nil
	}

	// Try to unmarshal as a string and split
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			*t = Tags{}
			return nil
		}
		*t = normalizeTags(strings.Split(s, ","))
		return nil
	}

	return fmt.Errorf("tags must be an array or a comma separated string")
}

// Scan implements sql.Scanner. NULL scans to an empty list.
func (t *Tags) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into Tags", src)
	}
	if len(data) == 0 {
		*t = Tags{}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("invalid tags %q: %w", data, err)
	}
	*t = Tags(list)
	return nil
}

// normalizeTags trims entries and drops empty ones.
func normalizeTags(in []string) Tags {
	out := make(Tags, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
