package app

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridbench/internal/telemetry"
)

func writeScript(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func TestRunWritesResults(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "dry.hcl", `
sweep "print" "kernels" {
  factor "kernel" {
    type   = "string"
    values = ["copy", var.kernel]
  }
  factor "threads" {
    type  = "uint32"
    range = { begin = 1, step = 1, count = 2 }
  }
}
`)
	writeScript(t, dir, "more.yaml", `
sweeps:
  - benchmark: print
    name: single
    factors:
      - name: size
        type: uint64
        values: [64]
`)
	out := filepath.Join(t.TempDir(), "results.csv")
	cfg, err := NewConfig(Config{
		ScriptPaths: []string{dir},
		OutputPath:  out,
		Vars:        map[string]string{"kernel": "triad"},
	})
	require.NoError(t, err)

	a, logs := SetupAppTest(t, cfg)
	require.Len(t, a.Model().Sweeps, 2)
	require.NoError(t, a.Run(context.Background()))

	records := readCSV(t, out)
	require.Len(t, records, 7, "header, four rows, header, one row")
	assert.Equal(t, []string{"run_id", "benchmark", "sweep", "kernel", "threads", "index", "changed"}, records[0])
	assert.Equal(t, []string{"print", "kernels", "copy", "1", "0", "2"}, records[1][1:])
	assert.Equal(t, []string{"print", "kernels", "triad", "2", "3", "1"}, records[4][1:])
	assert.Equal(t, []string{"run_id", "benchmark", "sweep", "size", "index", "changed"}, records[5])
	assert.Equal(t, records[1][0], records[6][0], "one run id for the whole run")
	assert.Contains(t, logs.String(), "Sweeps finished.")
}

func TestRunSystemFactors(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "sys.hcl", `
sweep "print" "host" {
  system_factors = true
  factor "os" {
    type   = "string"
    values = ["custom"]
  }
}
`)
	out := filepath.Join(t.TempDir(), "results.csv")
	a, _ := SetupAppTest(t, &Config{ScriptPaths: []string{dir}, OutputPath: out})
	require.NoError(t, a.Run(context.Background()))

	records := readCSV(t, out)
	require.Len(t, records, 2)
	assert.Contains(t, records[0], "cpu_count")
	assert.Equal(t, "os", records[0][3])
	assert.Equal(t, "custom", records[1][3], "script factors win over system facts")
}

func TestRunUploadsResults(t *testing.T) {
	var uploaded string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		uploaded = string(b)
	}))
	defer srv.Close()

	dir := t.TempDir()
	writeScript(t, dir, "dry.hcl", `
sweep "print" "one" {
  factor "n" {
    type   = "int32"
    values = [1]
  }
}
`)
	out := filepath.Join(t.TempDir(), "results.csv")
	a, _ := SetupAppTest(t, &Config{ScriptPaths: []string{dir}, OutputPath: out, UploadURL: srv.URL + "/results.csv"})
	require.NoError(t, a.Run(context.Background()))

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, string(written), uploaded)
}

func TestRunWritesTraces(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "dry.hcl", `
sweep "print" "one" {
  factor "n" {
    type   = "int32"
    values = [1, 2]
  }
}
`)
	traces := filepath.Join(t.TempDir(), "spans.json")
	a, _ := SetupAppTest(t, &Config{ScriptPaths: []string{dir}, OutputPath: filepath.Join(t.TempDir(), "r.csv"), TracePath: traces})
	require.NoError(t, a.Run(context.Background()))

	spans, err := os.ReadFile(traces)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(spans), `"Name":"configuration"`))
}

func TestListMode(t *testing.T) {
	a, logs := SetupAppTest(t, &Config{List: true})
	require.NoError(t, a.Run(context.Background()))

	out := logs.String()
	assert.Contains(t, out, "socketio\n  url=<required>\n")
	assert.Contains(t, out, "stream\n")
	assert.Contains(t, out, "  kernel=[triad]")
}

func TestNewAppRejectsInvalidScripts(t *testing.T) {
	cases := map[string]string{
		"unknown benchmark": `sweep "gpu_fft" "x" {}`,
		"missing factor":    `sweep "raycast" "x" {}`,
		"syntax":            `sweep "print" "x" {`,
	}
	for name, script := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeScript(t, dir, "bad.hcl", script)
			assert.Panics(t, func() {
				SetupAppTest(t, &Config{ScriptPaths: []string{dir}})
			})
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	a, _ := SetupAppTest(t, &Config{List: true})
	reg := prometheus.NewRegistry()
	m, err := telemetry.NewMetrics(reg)
	require.NoError(t, err)
	m.SweepStarted("print")

	srv := httptest.NewServer(a.newMux(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `gridbench_sweeps_total{benchmark="print"} 1`)
}

func TestNewConfig(t *testing.T) {
	_, err := NewConfig(Config{})
	assert.Error(t, err)

	cfg, err := NewConfig(Config{ScriptPaths: []string{"x.hcl"}})
	require.NoError(t, err)
	assert.Equal(t, "results.csv", cfg.OutputPath)

	_, err = NewConfig(Config{ScriptPaths: []string{"x.hcl"}, OutputPath: StdoutPath, UploadURL: "http://x"})
	assert.Error(t, err)

	_, err = NewConfig(Config{ScriptPaths: []string{"x.hcl"}, MetricsPort: 70000})
	assert.Error(t, err)

	_, err = NewConfig(Config{List: true})
	assert.NoError(t, err)
}

func TestNewConfigLogging(t *testing.T) {
	cfg, err := NewConfig(Config{ScriptPaths: []string{"x.hcl"}, LogLevel: "WARN", LogFormat: "Json"})
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, LogFormatJSON, cfg.LogFormat)

	cfg, err = NewConfig(Config{ScriptPaths: []string{"x.hcl"}})
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, LogFormatText, cfg.LogFormat)

	_, err = NewConfig(Config{ScriptPaths: []string{"x.hcl"}, LogLevel: "verbose"})
	assert.ErrorContains(t, err, "invalid log-level")

	_, err = NewConfig(Config{List: true, LogFormat: "xml"})
	assert.ErrorContains(t, err, "invalid log-format")
}
