// Package testutil runs scripts through a fully wired App for end-to-end
// tests.
package testutil

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/gridbench/internal/app"
	"github.com/vk/gridbench/internal/registry"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
	// Dir is the temporary directory the scripts were written to.
	Dir string
	// Records is the results CSV, header lines included.
	Records [][]string
}

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, modules...)
}

// RunIntegrationTestWithContext writes files below a temporary directory,
// loads every script found there and runs all sweeps. Startup panics are
// recovered into Err. Without modules the core benchmarks are registered.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	scriptDir := filepath.Join(tmpDir, "scripts")
	require.NoError(t, os.Mkdir(scriptDir, 0o755))

	// Paths are relative to tmpDir, so "scripts/x.hcl" is loaded and
	// "data/volume.raw" is only a fixture.
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	outPath := filepath.Join(tmpDir, "results.csv")
	cfg := &app.Config{
		ScriptPaths: []string{scriptDir},
		OutputPath:  outPath,
		LogLevel:    "debug",
		LogFormat:   "text",
		Vars:        map[string]string{"dir": tmpDir},
	}

	logBuffer := &app.SafeBuffer{}
	result := &HarnessResult{Dir: tmpDir}

	func() {
		defer func() {
			if r := recover(); r != nil {
				result.Err = fmt.Errorf("application startup panicked | %v", r)
			}
		}()
		result.App = app.NewApp(logBuffer, cfg, app.DefaultLoader(cfg), modules...)
	}()

	if result.Err == nil {
		result.Err = result.App.Run(ctx)
		result.Records = readRecords(t, outPath)
	}

	if os.Getenv("GRIDBENCH_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}
	result.LogOutput = logBuffer.String()
	return result
}

func readRecords(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}
