package env_vars

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridbench/internal/sysfactor"
	"github.com/vk/gridbench/internal/variant"
)

func TestRegisterFacts(t *testing.T) {
	reg := sysfactor.New()
	require.NoError(t, reg.Register("os", func() (variant.Variant, error) { return variant.Of("linux"), nil }))

	names, err := RegisterFacts(reg, []string{
		"PATH=/usr/bin",
		"GRIDBENCH_FACT_DRIVER_VERSION=535.104",
		"GRIDBENCH_FACT_RACK=b=7",
		"GRIDBENCH_FACT_=ignored",
		"GRIDBENCH_FACT_OS=duplicate",
		"malformed",
	}, Prefix)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "GRIDBENCH_FACT_OS")
	assert.Equal(t, []string{"driver_version", "rack"}, names)
	assert.Equal(t, []string{"driver_version", "os", "rack"}, reg.Names())

	facts, err := reg.Collect(context.Background())
	require.NoError(t, err)
	got := map[string]string{}
	for _, f := range facts {
		got[f.Name] = f.Value.String()
	}
	assert.Equal(t, map[string]string{"driver_version": "535.104", "os": "linux", "rack": "b=7"}, got)
}

func TestRegisterFactsEmpty(t *testing.T) {
	names, err := RegisterFacts(sysfactor.New(), nil, Prefix)
	assert.NoError(t, err)
	assert.Empty(t, names)
}
