package http_client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/vk/gridbench/internal/benchmark"
	"github.com/vk/gridbench/internal/configuration"
	"github.com/vk/gridbench/internal/ctxlog"
	"github.com/vk/gridbench/internal/variant"
)

// OnRun sends the configured number of requests and reports their latency.
func (b *Benchmark) OnRun(ctx context.Context, cfg configuration.Configuration, changed []string) (*benchmark.Result, error) {
	logger := ctxlog.FromContext(ctx)

	url, err := configuration.Lookup[string](cfg, FactorURL)
	if err != nil {
		return nil, err
	}
	method, err := configuration.Lookup[string](cfg, FactorMethod)
	if err != nil {
		return nil, err
	}
	requests, err := configuration.Lookup[uint32](cfg, FactorRequests)
	if err != nil {
		return nil, err
	}
	if requests == 0 {
		return nil, fmt.Errorf("%s must be at least 1", FactorRequests)
	}
	timeoutMS, err := configuration.Lookup[uint32](cfg, FactorTimeoutMS)
	if err != nil {
		return nil, err
	}

	if b.client == nil || slices.Contains(changed, FactorTimeoutMS) {
		destroyHttpClient(b.client)
		logger.Debug("Creating HTTP client.", "timeout_ms", timeoutMS)
		b.client = createHttpClient(timeoutMS)
	}

	var (
		total, lo, hi time.Duration
		status        int
		bytes         uint64
	)
	for i := uint32(0); i < requests; i++ {
		d, st, n, err := b.do(ctx, method, url)
		if err != nil {
			return nil, err
		}
		if i == 0 || d < lo {
			lo = d
		}
		hi = max(hi, d)
		total += d
		status = st
		bytes += n
	}
	logger.Debug("Requests finished.", "url", url, "status", status, "requests", requests)

	ms := func(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }
	return benchmark.NewResult().
		Add("mean_ms", variant.Of(ms(total/time.Duration(requests)))).
		Add("min_ms", variant.Of(ms(lo))).
		Add("max_ms", variant.Of(ms(hi))).
		Add("status", variant.Of(int32(status))).
		Add("bytes", variant.Of(bytes)), nil
}

// do performs one request, reading the whole body.
func (b *Benchmark) do(ctx context.Context, method, url string) (time.Duration, int, uint64, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to create request: %w", err)
	}
	start := time.Now()
	resp, err := b.client.Do(req)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	n, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	elapsed := time.Since(start)
	if resp.StatusCode >= http.StatusBadRequest {
		return 0, 0, 0, fmt.Errorf("request failed with status: %s", resp.Status)
	}
	return elapsed, resp.StatusCode, uint64(n), nil
}
