package configuration

import (
	"context"
	"fmt"
	"math/bits"
	"slices"
	"strings"

	"github.com/vk/gridbench/internal/factor"
	"github.com/vk/gridbench/internal/sysfactor"
)

// Set is an ordered collection of uniquely named factors. Its expansion is
// the cartesian product of all manifestations in odometer order: the first
// factor varies fastest.
//
// A Set must not be modified while ForEach is iterating over it.
type Set struct {
	factors []factor.Factor
}

// NewSet returns a Set containing factors, added in order with AddFactor.
func NewSet(factors ...factor.Factor) (*Set, error) {
	s := &Set{}
	for _, f := range factors {
		if err := s.AddFactor(f); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustNewSet is like NewSet but panics on error.
func MustNewSet(factors ...factor.Factor) *Set {
	s, err := NewSet(factors...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Set) index(name string) int {
	return slices.IndexFunc(s.factors, func(f factor.Factor) bool { return f.Name() == name })
}

// AddFactor appends f. It fails without modifying s when f has no name, has
// no manifestations, or shares its name with a factor already in s.
func (s *Set) AddFactor(f factor.Factor) error {
	if f.Name() == "" {
		return fmt.Errorf("%w: factor without a name", ErrInvalidArgument)
	}
	if f.Len() == 0 {
		return fmt.Errorf("%w: factor %q has no manifestations", ErrInvalidArgument, f.Name())
	}
	if s.index(f.Name()) >= 0 {
		return fmt.Errorf("%w: factor %q already exists", ErrInvalidArgument, f.Name())
	}
	s.factors = append(s.factors, f.Clone())
	return nil
}

// AddRequired declares a factor the caller of a benchmark must provide. The
// placeholder has no manifestations and is only meaningful in a
// benchmark's defaults.
func (s *Set) AddRequired(name string) error {
	if name == "" {
		return fmt.Errorf("%w: factor without a name", ErrInvalidArgument)
	}
	if s.index(name) >= 0 {
		return fmt.Errorf("%w: factor %q already exists", ErrInvalidArgument, name)
	}
	s.factors = append(s.factors, factor.Required(name))
	return nil
}

// AddSystemFactors appends a single-valued factor for every fact reg
// collects, skipping names already in s. Providers that fail are skipped and
// their errors joined into the returned error.
func (s *Set) AddSystemFactors(ctx context.Context, reg *sysfactor.Registry) error {
	facts, err := reg.Collect(ctx)
	for _, f := range facts {
		if s.index(f.Name) >= 0 {
			continue
		}
		fac, ferr := factor.FromManifestations(f.Name, f.Value)
		if ferr != nil {
			continue
		}
		s.factors = append(s.factors, fac)
	}
	return err
}

// ReplaceFactor overwrites the factor with the same name in place, or
// appends f if there is none.
func (s *Set) ReplaceFactor(f factor.Factor) {
	if i := s.index(f.Name()); i >= 0 {
		s.factors[i] = f.Clone()
		return
	}
	s.factors = append(s.factors, f.Clone())
}

// RemoveFactor removes the named factor and reports whether it existed.
func (s *Set) RemoveFactor(name string) bool {
	i := s.index(name)
	if i < 0 {
		return false
	}
	s.factors = slices.Delete(s.factors, i, i+1)
	return true
}

// Factor returns the named factor.
func (s *Set) Factor(name string) (factor.Factor, bool) {
	if i := s.index(name); i >= 0 {
		return s.factors[i], true
	}
	return factor.Factor{}, false
}

// Contains reports whether a factor with the given name exists.
func (s *Set) Contains(name string) bool {
	return s.index(name) >= 0
}

// Len returns the number of factors.
func (s *Set) Len() int { return len(s.factors) }

// Factors returns a copy of the factors in order.
func (s *Set) Factors() []factor.Factor {
	out := make([]factor.Factor, len(s.factors))
	for i, f := range s.factors {
		out[i] = f.Clone()
	}
	return out
}

// Names returns the factor names in order.
func (s *Set) Names() []string {
	names := make([]string, len(s.factors))
	for i, f := range s.factors {
		names[i] = f.Name()
	}
	return names
}

// Clone returns an independent copy of s.
func (s *Set) Clone() *Set {
	return &Set{factors: s.Factors()}
}

// Merge adds the factors of other that s lacks, appending them in other's
// order. Factors present in both are replaced by other's version only when
// overwrite is true.
func (s *Set) Merge(other *Set, overwrite bool) {
	if other == nil {
		return
	}
	for _, f := range other.factors {
		i := s.index(f.Name())
		switch {
		case i < 0:
			s.factors = append(s.factors, f.Clone())
		case overwrite:
			s.factors[i] = f.Clone()
		}
	}
}

// OptimiseOrder moves the named factors to the front, in the given order,
// so they vary fastest during expansion. Unknown names are ignored. The set
// of configurations does not change, only their order.
func (s *Set) OptimiseOrder(names ...string) {
	front := make([]factor.Factor, 0, len(names))
	for _, name := range names {
		if i := s.index(name); i >= 0 {
			front = append(front, s.factors[i])
			s.factors = slices.Delete(s.factors, i, i+1)
		}
	}
	s.factors = append(front, s.factors...)
}

// Count returns the number of configurations in the expansion, the product
// of all factor sizes. An empty set has zero configurations.
func (s *Set) Count() (uint64, error) {
	if len(s.factors) == 0 {
		return 0, nil
	}
	total := uint64(1)
	for _, f := range s.factors {
		hi, lo := bits.Mul64(total, uint64(f.Len()))
		if hi != 0 {
			return 0, fmt.Errorf("%w: factor %q pushes the product past 2^64", ErrOverflow, f.Name())
		}
		total = lo
	}
	return total, nil
}

// frequencies returns the odometer radix weights: entry j is the product of
// the sizes of the factors before j.
func (s *Set) frequencies() []uint64 {
	freq := make([]uint64, len(s.factors))
	w := uint64(1)
	for j, f := range s.factors {
		freq[j] = w
		w *= uint64(f.Len())
	}
	return freq
}

// ForEach calls fn with every configuration of the expansion in odometer
// order. Enumeration stops as soon as fn returns false, in which case
// ForEach returns false. An empty set, or a nil fn, visits nothing and
// returns true.
//
// Each call receives a freshly built Configuration that fn may retain.
func (s *Set) ForEach(fn func(Configuration) bool) (bool, error) {
	if len(s.factors) == 0 || fn == nil {
		return true, nil
	}
	total, err := s.Count()
	if err != nil {
		return false, err
	}
	freq := s.frequencies()
	for i := uint64(0); i < total; i++ {
		cfg, err := s.at(i, freq)
		if err != nil {
			return false, err
		}
		if !fn(cfg) {
			return false, nil
		}
	}
	return true, nil
}

// At returns the configuration at odometer index i.
func (s *Set) At(i uint64) (Configuration, error) {
	total, err := s.Count()
	if err != nil {
		return Configuration{}, err
	}
	if i >= total {
		return Configuration{}, fmt.Errorf("%w: configuration %d of %d", ErrNotFound, i, total)
	}
	return s.at(i, s.frequencies())
}

func (s *Set) at(i uint64, freq []uint64) (Configuration, error) {
	cfg := Configuration{entries: make([]Entry, len(s.factors))}
	for j, f := range s.factors {
		ij := (i / freq[j]) % uint64(f.Len())
		v, err := f.At(int(ij))
		if err != nil {
			return Configuration{}, err
		}
		cfg.entries[j] = Entry{Name: f.Name(), Value: v}
	}
	return cfg, nil
}

// String lists the factors, one per line.
func (s *Set) String() string {
	lines := make([]string, len(s.factors))
	for i, f := range s.factors {
		lines[i] = f.String()
	}
	return strings.Join(lines, "\n")
}
