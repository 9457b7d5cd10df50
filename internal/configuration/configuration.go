// Package configuration holds the experiment space of a sweep: the Set of
// factors a producer builds, and the concrete Configurations its odometer
// expansion yields one at a time.
package configuration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vk/gridbench/internal/sysfactor"
	"github.com/vk/gridbench/internal/variant"
)

var (
	// ErrInvalidArgument is returned for malformed factors and duplicate names.
	ErrInvalidArgument = errors.New("invalid configuration argument")

	// ErrNotFound is returned when a named entry or factor does not exist.
	ErrNotFound = errors.New("not found")

	// ErrOverflow is returned when the number of configurations does not fit
	// in a uint64.
	ErrOverflow = errors.New("configuration count overflows")
)

// Entry is one (name, value) pair of a Configuration.
type Entry struct {
	Name  string
	Value variant.Variant
}

// Configuration is one fully resolved parameter assignment. Entries keep
// their insertion order.
type Configuration struct {
	entries []Entry
}

// New returns a Configuration holding entries in order.
func New(entries ...Entry) Configuration {
	return Configuration{entries: append([]Entry(nil), entries...)}
}

// Add appends an entry. Names are not checked for uniqueness here; Get
// returns the first match.
func (c *Configuration) Add(name string, v variant.Variant) {
	c.entries = append(c.entries, Entry{Name: name, Value: v})
}

// AddSystemFactors appends one entry per fact reg collects, skipping names
// the configuration already holds. Failing providers are skipped and their
// errors joined into the returned error.
func (c *Configuration) AddSystemFactors(ctx context.Context, reg *sysfactor.Registry) error {
	facts, err := reg.Collect(ctx)
	for _, f := range facts {
		if !c.Contains(f.Name) {
			c.Add(f.Name, f.Value)
		}
	}
	return err
}

// Get returns the value of the named entry.
func (c Configuration) Get(name string) (variant.Variant, bool) {
	for _, e := range c.entries {
		if e.Name == name {
			return e.Value, true
		}
	}
	return variant.Variant{}, false
}

// Contains reports whether an entry with the given name exists.
func (c Configuration) Contains(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Len returns the number of entries.
func (c Configuration) Len() int { return len(c.entries) }

// Entries returns a copy of the entries in order.
func (c Configuration) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Names returns the entry names in order.
func (c Configuration) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// Clone returns an independent copy of c.
func (c Configuration) Clone() Configuration {
	return New(c.entries...)
}

// String renders c as "a=1, b=x" for logs.
func (c Configuration) String() string {
	var sb strings.Builder
	for i, e := range c.entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.Name)
		sb.WriteByte('=')
		sb.WriteString(e.Value.String())
	}
	return sb.String()
}

// Lookup returns the named entry converted to T with variant.As.
func Lookup[T variant.Value](c Configuration, name string) (T, error) {
	v, ok := c.Get(name)
	if !ok {
		var zero T
		return zero, fmt.Errorf("factor %q: %w", name, ErrNotFound)
	}
	x, err := variant.As[T](v)
	if err != nil {
		return x, fmt.Errorf("factor %q: %w", name, err)
	}
	return x, nil
}

// ChangeSet returns the names of cur whose value differs from prev. With no
// previous configuration every name counts as changed.
func ChangeSet(prev *Configuration, cur Configuration) []string {
	if prev == nil {
		return cur.Names()
	}
	var changed []string
	for _, e := range cur.entries {
		pv, ok := prev.Get(e.Name)
		if !ok || !variant.Equal(pv, e.Value) {
			changed = append(changed, e.Name)
		}
	}
	return changed
}
