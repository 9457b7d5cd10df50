package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertSweepRan checks the log output within a HarnessResult to confirm
// that a sweep has completed.
func AssertSweepRan(t *testing.T, result *HarnessResult, benchmark, sweep string) {
	t.Helper()

	const expected = `msg="Sweep complete."`
	found := false
	for _, line := range strings.Split(result.LogOutput, "\n") {
		if strings.Contains(line, expected) && strings.Contains(line, "sweep="+benchmark+"."+sweep) {
			found = true
			break
		}
	}
	require.True(t, found, "expected sweep '%s.%s' to complete, logs:\n%s", benchmark, sweep, result.LogOutput)
}

// Rows returns the data rows of one sweep, keyed by column name.
func Rows(result *HarnessResult, benchmark, sweep string) []map[string]string {
	var (
		header []string
		rows   []map[string]string
	)
	for _, rec := range result.Records {
		if len(rec) > 0 && rec[0] == "run_id" {
			header = rec
			continue
		}
		if len(rec) < 3 || rec[1] != benchmark || rec[2] != sweep {
			continue
		}
		row := make(map[string]string, len(rec))
		for i, v := range rec {
			if i < len(header) {
				row[header[i]] = v
			}
		}
		rows = append(rows, row)
	}
	return rows
}
