package http_client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridbench/internal/benchmark"
	"github.com/vk/gridbench/internal/configuration"
	"github.com/vk/gridbench/internal/factor"
	"github.com/vk/gridbench/internal/variant"
)

func TestSweep(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, "hello")
	}))
	defer srv.Close()

	b := New()
	set := configuration.MustNewSet(
		factor.Must(factor.Of(FactorURL, srv.URL, srv.URL+"/other")),
		factor.Must(factor.Of(FactorRequests, uint32(3))),
	)

	var clients []*client
	n, err := b.Run(context.Background(), set, func(_ configuration.Configuration, res *benchmark.Result) bool {
		status, _ := res.Get("status")
		assert.Equal(t, int32(200), variant.MustGet[int32](status))
		bytes, _ := res.Get("bytes")
		assert.Equal(t, uint64(15), variant.MustGet[uint64](bytes))
		lo, _ := res.Get("min_ms")
		hi, _ := res.Get("max_ms")
		assert.LessOrEqual(t, variant.MustGet[float64](lo), variant.MustGet[float64](hi))
		clients = append(clients, b.client)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int32(6), hits.Load())
	assert.Same(t, clients[0], clients[1], "the client survives a url change")
}

func TestClientRebuiltOnTimeoutChange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	b := New()
	set := configuration.MustNewSet(
		factor.Must(factor.Of(FactorURL, srv.URL)),
		factor.Must(factor.Of(FactorTimeoutMS, uint32(1000), uint32(2000))),
		factor.Must(factor.Of(FactorRequests, uint32(1))),
	)
	var timeouts []uint32
	_, err := b.Run(context.Background(), set, func(configuration.Configuration, *benchmark.Result) bool {
		timeouts = append(timeouts, b.client.timeoutMS)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []uint32{1000, 2000}, timeouts)
}

func TestFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	b := New()
	set := configuration.MustNewSet(
		factor.Must(factor.Of(FactorURL, srv.URL+"/missing", srv.URL, "://bad")),
		factor.Must(factor.Of(FactorRequests, uint32(1))),
	)
	n, err := b.Run(context.Background(), set, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only the reachable url produces a result")

	_, err = b.Run(context.Background(), &configuration.Set{}, nil)
	assert.ErrorIs(t, err, benchmark.ErrMissingFactor)
}
