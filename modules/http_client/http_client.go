// Package http_client measures HTTP request latency. The client is an
// asset kept between configurations and rebuilt only when its timeout
// changes, so connection reuse is part of what is measured.
package http_client

import (
	"github.com/vk/gridbench/internal/benchmark"
	"github.com/vk/gridbench/internal/factor"
	"github.com/vk/gridbench/internal/registry"
)

// Name is the benchmark's registered name.
const Name = "http"

// Factor names.
const (
	FactorURL       = "url"
	FactorMethod    = "method"
	FactorRequests  = "requests"
	FactorTimeoutMS = "timeout_ms"
)

// Module implements the registry.Module interface. It's the main entrypoint
// for the http_client module.
type Module struct{}

// Register registers the benchmark with the central registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBenchmark(New())
}

// Benchmark issues a number of sequential requests per configuration.
type Benchmark struct {
	*benchmark.Base
	client *client
}

// New returns the http benchmark with its defaults.
func New() *Benchmark {
	b := &Benchmark{}
	b.Base = benchmark.NewBase(Name, b)
	if err := b.Require(FactorURL); err != nil {
		panic(err)
	}
	for _, f := range []factor.Factor{
		factor.Must(factor.Of(FactorMethod, "GET")),
		factor.Must(factor.Of(FactorRequests, uint32(10))),
		factor.Must(factor.Of(FactorTimeoutMS, uint32(5000))),
	} {
		if err := b.SetDefault(f); err != nil {
			panic(err)
		}
	}
	return b
}

// Close drops the pooled client and its idle connections.
func (b *Benchmark) Close() {
	destroyHttpClient(b.client)
	b.client = nil
}
