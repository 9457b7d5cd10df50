// Package socketio measures Socket.IO round-trip latency: it emits an event
// carrying a payload and waits for the server to send it back. The
// connection is kept between configurations and re-established only when
// the url or namespace changes.
package socketio

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/vk/gridbench/internal/benchmark"
	"github.com/vk/gridbench/internal/configuration"
	"github.com/vk/gridbench/internal/ctxlog"
	"github.com/vk/gridbench/internal/factor"
	"github.com/vk/gridbench/internal/registry"
	"github.com/vk/gridbench/internal/variant"
	"github.com/zishang520/engine.io/v2/types"
)

// Name is the benchmark's registered name.
const Name = "socketio"

// Factor names.
const (
	FactorURL                = "url"
	FactorNamespace          = "namespace"
	FactorEvent              = "event"
	FactorReplyEvent         = "reply_event"
	FactorPayloadSize        = "payload_size"
	FactorRoundTrips         = "round_trips"
	FactorTimeoutMS          = "timeout_ms"
	FactorInsecureSkipVerify = "insecure_skip_verify"
)

// connectionFactors are the factors whose change forces a reconnect.
var connectionFactors = []string{FactorURL, FactorNamespace, FactorInsecureSkipVerify}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the benchmark with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBenchmark(New())
}

// Benchmark holds the live connection between configurations.
type Benchmark struct {
	*benchmark.Base
	conn *connection
}

// New returns the socketio benchmark with its defaults. An empty
// reply_event means the server answers on the emitted event.
func New() *Benchmark {
	b := &Benchmark{}
	b.Base = benchmark.NewBase(Name, b)
	if err := b.Require(FactorURL); err != nil {
		panic(err)
	}
	for _, f := range []factor.Factor{
		factor.Must(factor.Of(FactorNamespace, "/")),
		factor.Must(factor.Of(FactorEvent, "echo")),
		factor.Must(factor.Of(FactorReplyEvent, "")),
		factor.Must(factor.Of(FactorPayloadSize, uint32(64))),
		factor.Must(factor.Of(FactorRoundTrips, uint32(10))),
		factor.Must(factor.Of(FactorTimeoutMS, uint32(5000))),
		factor.Must(factor.Of(FactorInsecureSkipVerify, false)),
	} {
		if err := b.SetDefault(f); err != nil {
			panic(err)
		}
	}
	return b
}

type params struct {
	url, namespace     string
	event, replyEvent  string
	payloadSize        int
	roundTrips         int
	timeout            time.Duration
	insecureSkipVerify bool
}

func readParams(cfg configuration.Configuration) (p params, err error) {
	if p.url, err = configuration.Lookup[string](cfg, FactorURL); err != nil {
		return p, err
	}
	if p.namespace, err = configuration.Lookup[string](cfg, FactorNamespace); err != nil {
		return p, err
	}
	if p.event, err = configuration.Lookup[string](cfg, FactorEvent); err != nil {
		return p, err
	}
	if p.replyEvent, err = configuration.Lookup[string](cfg, FactorReplyEvent); err != nil {
		return p, err
	}
	if p.replyEvent == "" {
		p.replyEvent = p.event
	}
	size, err := configuration.Lookup[uint32](cfg, FactorPayloadSize)
	if err != nil {
		return p, err
	}
	trips, err := configuration.Lookup[uint32](cfg, FactorRoundTrips)
	if err != nil {
		return p, err
	}
	if trips == 0 {
		return p, fmt.Errorf("%s must be at least 1", FactorRoundTrips)
	}
	timeoutMS, err := configuration.Lookup[uint32](cfg, FactorTimeoutMS)
	if err != nil {
		return p, err
	}
	if p.insecureSkipVerify, err = configuration.Lookup[bool](cfg, FactorInsecureSkipVerify); err != nil {
		return p, err
	}
	p.payloadSize = int(size)
	p.roundTrips = int(trips)
	p.timeout = time.Duration(timeoutMS) * time.Millisecond
	return p, nil
}

// OnRun performs the configured number of round trips.
func (b *Benchmark) OnRun(ctx context.Context, cfg configuration.Configuration, changed []string) (*benchmark.Result, error) {
	p, err := readParams(cfg)
	if err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx).With("url", p.url, "namespace", p.namespace)

	reconnect := slices.ContainsFunc(changed, func(name string) bool { return slices.Contains(connectionFactors, name) })
	if b.conn == nil || reconnect || !b.conn.io.Connected() {
		b.Close()
		if b.conn, err = dial(ctx, p); err != nil {
			return nil, err
		}
		logger.Debug("Connected.", "sid", b.conn.io.Id())
	}

	payload := strings.Repeat("x", p.payloadSize)
	var total, lo, hi time.Duration
	for i := 0; i < p.roundTrips; i++ {
		d, err := b.conn.roundTrip(ctx, p, i, payload)
		if err != nil {
			// The reply may still arrive; start over on a fresh connection.
			b.Close()
			return nil, err
		}
		if i == 0 || d < lo {
			lo = d
		}
		hi = max(hi, d)
		total += d
	}

	ms := func(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }
	return benchmark.NewResult().
		Add("mean_ms", variant.Of(ms(total/time.Duration(p.roundTrips)))).
		Add("min_ms", variant.Of(ms(lo))).
		Add("max_ms", variant.Of(ms(hi))), nil
}

// Close disconnects the live connection, if any.
func (b *Benchmark) Close() {
	if b.conn != nil {
		b.conn.io.Disconnect()
		b.conn = nil
	}
}

func eventName(s string) types.EventName { return types.EventName(s) }
