package benchmark

import (
	"strings"

	"github.com/vk/gridbench/internal/configuration"
	"github.com/vk/gridbench/internal/variant"
)

// Result is the ordered bag of named values a back-end produces for one
// configuration.
type Result struct {
	entries []configuration.Entry
}

// NewResult returns an empty Result.
func NewResult() *Result {
	return &Result{}
}

// Add appends a named value and returns r for chaining. Adding an existing
// name replaces its value in place.
func (r *Result) Add(name string, v variant.Variant) *Result {
	for i := range r.entries {
		if r.entries[i].Name == name {
			r.entries[i].Value = v
			return r
		}
	}
	r.entries = append(r.entries, configuration.Entry{Name: name, Value: v})
	return r
}

// Get returns the named value.
func (r *Result) Get(name string) (variant.Variant, bool) {
	if r == nil {
		return variant.Variant{}, false
	}
	for _, e := range r.entries {
		if e.Name == name {
			return e.Value, true
		}
	}
	return variant.Variant{}, false
}

// Entries returns a copy of the result's entries in insertion order.
func (r *Result) Entries() []configuration.Entry {
	if r == nil {
		return nil
	}
	return append([]configuration.Entry(nil), r.entries...)
}

// Len returns the number of entries.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

func (r *Result) String() string {
	parts := make([]string, 0, r.Len())
	for _, e := range r.Entries() {
		parts = append(parts, e.Name+"="+e.Value.String())
	}
	return strings.Join(parts, ", ")
}
