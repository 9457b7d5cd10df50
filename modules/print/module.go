// Package print is a dry-run benchmark: it writes every configuration and
// its change set instead of executing a workload. Pointing a sweep at
// "print" shows what a real back-end would be asked to do.
package print

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vk/gridbench/internal/benchmark"
	"github.com/vk/gridbench/internal/configuration"
	"github.com/vk/gridbench/internal/ctxlog"
	"github.com/vk/gridbench/internal/registry"
	"github.com/vk/gridbench/internal/variant"
)

// Name is the benchmark's registered name.
const Name = "print"

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives the printed configurations. Nil means os.Stdout.
	Out io.Writer
}

// Register registers the benchmark with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBenchmark(New(m.Out))
}

// Benchmark prints configurations.
type Benchmark struct {
	*benchmark.Base
	out   io.Writer
	index uint64
}

// New returns a print benchmark writing to out.
func New(out io.Writer) *Benchmark {
	if out == nil {
		out = os.Stdout
	}
	b := &Benchmark{out: out}
	b.Base = benchmark.NewBase(Name, b)
	return b
}

// OnRun prints cfg and reports how many factors changed.
func (b *Benchmark) OnRun(ctx context.Context, cfg configuration.Configuration, changed []string) (*benchmark.Result, error) {
	ctxlog.FromContext(ctx).Debug("Printing configuration.", "index", b.index)

	if cfg.Len() == 0 {
		fmt.Fprintln(b.out, "      (empty)")
	}
	for _, e := range cfg.Entries() {
		fmt.Fprintf(b.out, "      %s = %q\n", e.Name, e.Value.String())
	}
	if _, err := fmt.Fprintf(b.out, "      changed: %s\n", strings.Join(changed, ", ")); err != nil {
		return nil, err
	}

	res := benchmark.NewResult().
		Add("index", variant.Of(b.index)).
		Add("changed", variant.Of(uint32(len(changed))))
	b.index++
	return res, nil
}
