package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// A syntax error panics inside app.NewApp().
	invalidHCL := `
		sweep "print" "A" {
			factor "n" {
		// Missing closing brace here
	`
	filePath := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0o600))

	out := &bytes.Buffer{}
	runErr := run(context.Background(), out, []string{filePath})

	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")
	assert.Contains(t, runErr.Error(), "application startup panicked")
	assert.Contains(t, runErr.Error(), "failed to parse")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_DryRunToStdout(t *testing.T) {
	t.Parallel()

	script := `
sweep "print" "dry" {
  factor "kernel" {
    type   = "string"
    values = ["copy", "scale"]
  }
}
`
	filePath := filepath.Join(t.TempDir(), "dry.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(script), 0o600))

	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), out, []string{"-o", "-", "-log-level", "error", filePath}))
	assert.Contains(t, out.String(), "run_id,benchmark,sweep,kernel,index,changed\n")
	assert.Contains(t, out.String(), ",print,dry,scale,1,1\n")
}
