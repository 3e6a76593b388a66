package appraisal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Result is one model-generated listing. Every field is required.
type Result struct {
	Title              string   `json:"title"`
	ListingDescription string   `json:"listingDescription"`
	RentPrice          string   `json:"rentPrice"`
	Amenities          []string `json:"amenities"`
	BroQuote           string   `json:"broQuote"`
}

// Clone returns a copy that shares no memory with r.
func (r Result) Clone() Result {
	out := r
	if r.Amenities != nil {
		out.Amenities = make([]string, len(r.Amenities))
		copy(out.Amenities, r.Amenities)
	}
	return out
}

// ParseResult decodes model output strictly: all five fields must be present,
// non-null and of the declared JSON type. Nothing is coerced.
func ParseResult(text string) (Result, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil {
		return Result{}, newError(KindDecode, fmt.Errorf("response is not a JSON object: %w", err))
	}

	var r Result
	strFields := []struct {
		name string
		dst  *string
	}{
		{"title", &r.Title},
		{"listingDescription", &r.ListingDescription},
		{"rentPrice", &r.RentPrice},
		{"broQuote", &r.BroQuote},
	}
	for _, f := range strFields {
		v, err := requireField(raw, f.name)
		if err != nil {
			return Result{}, err
		}
		if err := json.Unmarshal(v, f.dst); err != nil {
			return Result{}, newError(KindSchema, fmt.Errorf("field %q must be a string: %w", f.name, err))
		}
	}

	v, err := requireField(raw, "amenities")
	if err != nil {
		return Result{}, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		return Result{}, newError(KindSchema, fmt.Errorf("field \"amenities\" must be an array: %w", err))
	}
	r.Amenities = make([]string, 0, len(items))
	for i, item := range items {
		var s *string
		if err := json.Unmarshal(item, &s); err != nil || s == nil {
			return Result{}, newError(KindSchema, fmt.Errorf("amenities[%d] must be a string", i))
		}
		r.Amenities = append(r.Amenities, *s)
	}

	return r, nil
}

func requireField(raw map[string]json.RawMessage, name string) (json.RawMessage, error) {
	v, ok := raw[name]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil, newError(KindSchema, fmt.Errorf("missing required field %q", name))
	}
	return v, nil
}
