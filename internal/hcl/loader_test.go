package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridbench/internal/config"
	"github.com/vk/gridbench/internal/configuration"
	"github.com/vk/gridbench/internal/variant"
	"github.com/zclconf/go-cty/cty"
)

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadSweeps(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "stream.hcl", `
sweep "stream" "baseline" {
  system_factors = true
  optimise_order = ["threads"]

  factor "array_size" {
    type   = "uint64"
    values = [1048576, 4194304]
  }

  factor "threads" {
    type  = "uint32"
    range = { begin = 1, step = 1, count = 4 }
  }
}

sweep "raycast" "skull" {
  factor "volume_file_name" {
    type   = "string"
    values = ["skull.raw"]
  }
  factor "volume_dims" {
    type   = "uint32x3"
    values = [[256, 256, 256]]
  }
}
`)
	writeScript(t, dir, "notes.txt", "not a script")

	model, err := NewLoader(nil).Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, model.Sweeps, 2)

	stream := model.Sweeps[0]
	assert.Equal(t, "stream", stream.Benchmark)
	assert.Equal(t, "baseline", stream.Name)
	assert.True(t, stream.SystemFactors)
	assert.Equal(t, []string{"threads"}, stream.OptimiseOrder)
	assert.Equal(t, filepath.Join(dir, "stream.hcl"), stream.Source)
	assert.Equal(t, "array_size=[1048576, 4194304]\nthreads=range(1, 1, 4)", stream.Factors.String())

	count, err := stream.Factors.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(8), count)

	raycast := model.Sweeps[1]
	assert.False(t, raycast.SystemFactors)
	dims, ok := raycast.Factors.Factor("volume_dims")
	require.True(t, ok)
	v, err := dims.At(0)
	require.NoError(t, err)
	assert.Equal(t, [3]uint32{256, 256, 256}, variant.MustGet[[3]uint32](v))
}

func TestLoadVariables(t *testing.T) {
	dir := t.TempDir()
	p := writeScript(t, dir, "vars.hcl", `
sweep "http" "local" {
  factor "url" {
    type   = "string"
    values = var.urls
  }
}
`)
	vars := map[string]cty.Value{
		"urls": cty.TupleVal([]cty.Value{cty.StringVal("http://a"), cty.StringVal("http://b")}),
	}
	model, err := NewLoader(vars).Load(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, model.Sweeps, 1)
	assert.Equal(t, "url=[http://a, http://b]", model.Sweeps[0].Factors.String())

	_, err = NewLoader(nil).Load(context.Background(), p)
	assert.ErrorContains(t, err, "undefined variable var.urls: pass it with -var urls=<value>")
}

func TestLoadFunctions(t *testing.T) {
	p := writeScript(t, t.TempDir(), "fn.hcl", `
sweep "stream" "sizes" {
  factor "array_size" {
    type   = "uint64"
    values = [for i in range(3) : 1024 * (i + 1)]
  }
  factor "threads" {
    type   = "uint32"
    values = reverse(range(1, 9, 2))
  }
  factor "kernel" {
    type   = "string"
    values = distinct(concat(["copy"], [lower("COPY"), "triad"]))
  }
}
`)
	model, err := NewLoader(nil).Load(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "array_size=[1024, 2048, 3072]\nthreads=[7, 5, 3, 1]\nkernel=[copy, triad]", model.Sweeps[0].Factors.String())
}

func TestLoadRejectsUnresolvableReferences(t *testing.T) {
	tests := map[string]string{
		`unknown function "fft"`:      `values = fft([1])`,
		"unknown reference local.n":   `values = local.n`,
		"undefined variable var.size": `values = [var.size]`,
	}
	for want, attr := range tests {
		t.Run(want, func(t *testing.T) {
			p := writeScript(t, t.TempDir(), "bad.hcl", `
sweep "stream" "x" {
  factor "n" {
    type = "int32"
    `+attr+`
  }
}
`)
			vars := map[string]cty.Value{"other": cty.StringVal("1")}
			_, err := NewLoader(vars).Load(context.Background(), p)
			assert.ErrorContains(t, err, want)
		})
	}
}

func TestReferences(t *testing.T) {
	expr, diags := hclsyntax.ParseExpression([]byte(`concat(var.b, [upper(var.a)], var.b)`), "x.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors())

	traversals, calls := references(expr, nil)
	keys := make([]string, len(traversals))
	for i, tr := range traversals {
		keys[i] = traversalKey(tr)
	}
	assert.Equal(t, []string{"var.a", "var.b"}, keys)
	assert.Equal(t, []string{"concat", "upper"}, calls)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   error
	}{
		{
			name:   "syntax error",
			script: `sweep "a" {`,
		},
		{
			name: "missing values and range",
			script: `sweep "stream" "x" {
  factor "n" { type = "int32" }
}`,
			want: config.ErrInvalidFactor,
		},
		{
			name: "both values and range",
			script: `sweep "stream" "x" {
  factor "n" {
    type   = "int32"
    values = [1]
    range  = { begin = 0, step = 1, count = 2 }
  }
}`,
			want: config.ErrInvalidFactor,
		},
		{
			name: "duplicate factor",
			script: `sweep "stream" "x" {
  factor "n" {
    type = "int32"
    values = [1]
  }
  factor "n" {
    type = "int32"
    values = [2]
  }
}`,
			want: configuration.ErrInvalidArgument,
		},
		{
			name: "duplicate sweep",
			script: `sweep "stream" "x" {}
sweep "stream" "x" {}`,
			want: config.ErrDuplicateSweep,
		},
		{
			name: "unknown type",
			script: `sweep "stream" "x" {
  factor "n" {
    type = "int128"
    values = [1]
  }
}`,
			want: variant.ErrUnknownKind,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := writeScript(t, t.TempDir(), "bad.hcl", tc.script)
			_, err := NewLoader(nil).Load(context.Background(), p)
			require.Error(t, err)
			if tc.want != nil {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestLoadMissingPath(t *testing.T) {
	_, err := NewLoader(nil).Load(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
