package integration_tests

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridbench/internal/testutil"
)

func TestStreamAndRaycastSweeps(t *testing.T) {
	// --- Arrange ---
	streamHCL := `
		sweep "stream" "small" {
			optimise_order = ["kernel"]

			factor "array_size" {
				type   = "uint64"
				values = [1024, 4096]
			}
			factor "kernel" {
				type   = "string"
				values = ["copy", "triad"]
			}
			factor "iterations" {
				type   = "uint32"
				values = [1]
			}
		}
	`
	// Relative volume paths resolve against the working directory, not the
	// script, so every raycast configuration fails to load its volume.
	raycastYAML := `
sweeps:
  - benchmark: raycast
    name: tiny
    factors:
      - name: volume_file_name
        type: string
        values: [data/volume.raw]
      - name: volume_dims
        type: uint32x3
        values: [[4, 4, 4]]
      - name: viewport_width
        type: uint32
        values: [8]
      - name: viewport_height
        type: uint32
        values: [8]
      - name: camera_angle
        type: float
        range: {begin: 0, step: 45, count: 3}
`
	files := map[string]string{
		"scripts/stream.hcl":   streamHCL,
		"scripts/raycast.yaml": raycastYAML,
		"data/volume.raw":      strings.Repeat("\x80", 64),
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	require.NoError(t, result.Err)
	testutil.AssertSweepRan(t, result, "stream", "small")
	testutil.AssertSweepRan(t, result, "raycast", "tiny")

	rows := testutil.Rows(result, "stream", "small")
	require.Len(t, rows, 4)
	assert.Equal(t, "copy", rows[0]["kernel"])
	assert.Equal(t, "triad", rows[1]["kernel"], "kernel varies fastest")
	assert.Equal(t, "1024", rows[1]["array_size"])
	for _, row := range rows {
		assert.NotEmpty(t, row["bandwidth_mb_s"])
	}

	assert.Empty(t, testutil.Rows(result, "raycast", "tiny"), "every configuration failed to load the volume")
	assert.Equal(t, 3, strings.Count(result.LogOutput, "Configuration failed, skipping."))
}

func TestRaycastWithVariables(t *testing.T) {
	// --- Arrange ---
	raycastHCL := `
		sweep "raycast" "tiny" {
			factor "volume_file_name" {
				type   = "string"
				values = ["${var.dir}/data/volume.raw"]
			}
			factor "volume_dims" {
				type   = "uint32x3"
				values = [[4, 4, 4]]
			}
			factor "viewport_width" {
				type   = "uint32"
				values = [8, 16]
			}
			factor "viewport_height" {
				type   = "uint32"
				values = [8]
			}
		}
	`
	files := map[string]string{
		"scripts/raycast.hcl": raycastHCL,
		"data/volume.raw":     strings.Repeat("\x80", 64),
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	require.NoError(t, result.Err)
	rows := testutil.Rows(result, "raycast", "tiny")
	require.Len(t, rows, 2)
	assert.Equal(t, "64", rows[0]["rays"])
	assert.Equal(t, "128", rows[1]["rays"])
	assert.Equal(t, "0.5", rows[0]["step_size"], "defaults are recorded next to script factors")
}

func TestFailedConfigurationsAreSkipped(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"scripts/flaky.hcl": `
			sweep "flaky" "n" {
				factor "n" {
					type  = "int32"
					range = { begin = 0, step = 1, count = 5 }
				}
				factor "mode" {
					type   = "string"
					values = ["a"]
				}
			}
		`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, &testutil.FlakyModule{FailOn: []int32{1, 3}})

	// --- Assert ---
	require.NoError(t, result.Err)
	rows := testutil.Rows(result, "flaky", "n")
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"0", "2", "4"}, []string{rows[0]["n_seen"], rows[1]["n_seen"], rows[2]["n_seen"]})
	assert.Equal(t, "2", rows[1]["changed"], "a failure resets the change set")
	assert.Contains(t, result.LogOutput, "flaky failure at n=3")
}

func TestMultipleSweepsShareOneHeaderWhenColumnsMatch(t *testing.T) {
	// --- Arrange ---
	sweep := func(name string) string {
		return `
			sweep "noop" "` + name + `" {
				factor "x" {
					type   = "uint8"
					values = [1, 2]
				}
			}
		`
	}
	files := map[string]string{
		"scripts/a.hcl": sweep("first") + sweep("second"),
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, &testutil.NoOpModule{})

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Len(t, result.Records, 5)
	assert.Equal(t, []string{"run_id", "benchmark", "sweep", "x"}, result.Records[0])
	assert.Len(t, testutil.Rows(result, "noop", "second"), 2)
}

func TestCancelledRun(t *testing.T) {
	// --- Arrange ---
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	files := map[string]string{
		"scripts/a.hcl": `
			sweep "noop" "x" {
				factor "x" {
					type   = "uint8"
					values = [1, 2]
				}
			}
		`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTestWithContext(ctx, t, files, &testutil.NoOpModule{})

	// --- Assert ---
	require.ErrorIs(t, result.Err, context.Canceled)
	assert.Empty(t, testutil.Rows(result, "noop", "x"))
}
