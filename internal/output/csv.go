// Package output writes sweep results as CSV.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/vk/gridbench/internal/benchmark"
	"github.com/vk/gridbench/internal/configuration"
)

// Fixed leading columns of every row.
var fixedColumns = []string{"run_id", "benchmark", "sweep"}

// Row identifies the sweep a result belongs to.
type Row struct {
	RunID     string
	Benchmark string
	Sweep     string
	Config    configuration.Configuration
	Result    *benchmark.Result
}

// CSVWriter writes one line per result: the fixed columns, then one column
// per configuration entry, then one per result entry. A header line
// precedes the first row and is repeated, after an empty line, whenever the
// column set changes. Safe for concurrent use.
type CSVWriter struct {
	mu      sync.Mutex
	raw     io.Writer
	w       *csv.Writer
	columns []string
	rows    int
}

// NewCSVWriter returns a CSVWriter writing to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{raw: w, w: csv.NewWriter(w)}
}

// Write appends one row and flushes it.
func (c *CSVWriter) Write(row Row) error {
	columns := append(slices.Clone(fixedColumns), row.Config.Names()...)
	record := []string{row.RunID, row.Benchmark, row.Sweep}
	for _, e := range row.Config.Entries() {
		record = append(record, e.Value.String())
	}
	for _, e := range row.Result.Entries() {
		columns = append(columns, e.Name)
		record = append(record, e.Value.String())
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !slices.Equal(columns, c.columns) {
		if c.rows > 0 {
			// csv.Writer cannot emit a truly empty record.
			c.w.Flush()
			if _, err := io.WriteString(c.raw, "\n"); err != nil {
				return fmt.Errorf("writing csv separator: %w", err)
			}
		}
		if err := c.w.Write(columns); err != nil {
			return fmt.Errorf("writing csv header: %w", err)
		}
		c.columns = columns
	}
	if err := c.w.Write(record); err != nil {
		return fmt.Errorf("writing csv row: %w", err)
	}
	c.rows++
	c.w.Flush()
	return c.w.Error()
}

// Rows returns the number of rows written.
func (c *CSVWriter) Rows() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rows
}
