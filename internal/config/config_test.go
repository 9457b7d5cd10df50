package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridbench/internal/configuration"
	"github.com/vk/gridbench/internal/variant"
	"github.com/zclconf/go-cty/cty"
)

func TestBuildFactorValues(t *testing.T) {
	f, err := BuildFactor("array_size", "uint64", cty.TupleVal([]cty.Value{
		cty.NumberIntVal(1024), cty.StringVal("4096"),
	}), nil)
	require.NoError(t, err)
	assert.Equal(t, "array_size=[1024, 4096]", f.String())
	v, err := f.At(1)
	require.NoError(t, err)
	assert.Equal(t, variant.Uint64, v.Kind())

	f, err = BuildFactor("dims", "uint32x3", cty.ListVal([]cty.Value{
		cty.TupleVal([]cty.Value{cty.NumberIntVal(64), cty.NumberIntVal(64), cty.NumberIntVal(32)}),
	}), nil)
	require.NoError(t, err)
	v, _ = f.At(0)
	assert.Equal(t, [3]uint32{64, 64, 32}, variant.MustGet[[3]uint32](v))
}

func TestBuildFactorRange(t *testing.T) {
	rng, err := RangeFromObject(cty.ObjectVal(map[string]cty.Value{
		"begin": cty.NumberIntVal(0),
		"step":  cty.NumberIntVal(10),
		"count": cty.NumberIntVal(4),
	}))
	require.NoError(t, err)

	f, err := BuildFactor("c", "int32", cty.NilVal, rng)
	require.NoError(t, err)
	assert.Equal(t, []variant.Variant{
		variant.Of(int32(0)), variant.Of(int32(10)), variant.Of(int32(20)), variant.Of(int32(30)),
	}, f.Values())
}

func TestBuildFactorErrors(t *testing.T) {
	list := cty.TupleVal([]cty.Value{cty.NumberIntVal(1)})
	rng := &Range{Begin: cty.NumberIntVal(0), Step: cty.NumberIntVal(1), Count: cty.NumberIntVal(2)}

	tests := []struct {
		name    string
		factor  string
		typeTag string
		values  cty.Value
		rng     *Range
		want    error
	}{
		{"no name", "", "int32", list, nil, ErrInvalidFactor},
		{"unknown type", "x", "quaternion", list, nil, variant.ErrUnknownKind},
		{"both", "x", "int32", list, rng, ErrInvalidFactor},
		{"neither", "x", "int32", cty.NilVal, nil, ErrInvalidFactor},
		{"not a list", "x", "int32", cty.NumberIntVal(1), nil, ErrInvalidFactor},
		{"empty list", "x", "int32", cty.EmptyTupleVal, nil, ErrInvalidFactor},
		{"bad element", "x", "uint8", cty.TupleVal([]cty.Value{cty.NumberIntVal(300)}), nil, variant.ErrBadCast},
		{"string range", "x", "string", cty.NilVal, rng, ErrInvalidFactor},
		{"zero count", "x", "int32", cty.NilVal, &Range{Begin: cty.NumberIntVal(0), Step: cty.NumberIntVal(1), Count: cty.NumberIntVal(0)}, ErrInvalidFactor},
		{"fractional count", "x", "int32", cty.NilVal, &Range{Begin: cty.NumberIntVal(0), Step: cty.NumberIntVal(1), Count: cty.NumberFloatVal(1.5)}, ErrInvalidFactor},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildFactor(tc.factor, tc.typeTag, tc.values, tc.rng)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := RangeFromObject(cty.ObjectVal(map[string]cty.Value{"begin": cty.NumberIntVal(0)}))
	assert.ErrorIs(t, err, ErrInvalidFactor)
	_, err = RangeFromObject(cty.StringVal("0..4"))
	assert.ErrorIs(t, err, ErrInvalidFactor)
}

type staticLoader struct {
	model *Model
	err   error
}

func (s staticLoader) Load(context.Context, ...string) (*Model, error) {
	return s.model, s.err
}

func sweep(bench, name, src string) *Sweep {
	return &Sweep{Benchmark: bench, Name: name, Source: src, Factors: &configuration.Set{}}
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	l := Chain(
		staticLoader{model: &Model{Sweeps: []*Sweep{sweep("stream", "a", "a.hcl")}}},
		staticLoader{model: &Model{Sweeps: []*Sweep{sweep("stream", "b", "b.yaml")}}},
		staticLoader{},
	)
	m, err := l.Load(ctx, "scripts")
	require.NoError(t, err)
	require.Len(t, m.Sweeps, 2)
	assert.Equal(t, "stream.a", m.Sweeps[0].ID())
	assert.Equal(t, "stream.b", m.Sweeps[1].ID())

	_, err = Chain(
		staticLoader{model: &Model{Sweeps: []*Sweep{sweep("stream", "a", "a.hcl")}}},
		staticLoader{model: &Model{Sweeps: []*Sweep{sweep("stream", "a", "a.yaml")}}},
	).Load(ctx)
	assert.ErrorIs(t, err, ErrDuplicateSweep)

	boom := errors.New("boom")
	_, err = Chain(staticLoader{err: boom}).Load(ctx)
	assert.ErrorIs(t, err, boom)
}
