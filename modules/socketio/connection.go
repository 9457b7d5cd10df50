package socketio

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/gridbench/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// ErrTimeout is returned when the server does not answer in time.
var ErrTimeout = errors.New("socket.io timeout")

type connection struct {
	io *socket.Socket
}

// dial connects to p.url and waits for the connect event.
func dial(ctx context.Context, p params) (*connection, error) {
	logger := ctxlog.FromContext(ctx).With("url", p.url)

	parsedURL, err := url.Parse(p.url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("failed to parse URL: %q has no scheme or host", p.url)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		opts.SetPath(parsedURL.Path)
	}
	if p.insecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(p.namespace, opts)

	connectChan := make(chan error, 1)
	io.Once(eventName("connect"), func(...any) {
		connectChan <- nil
	})
	io.Once(eventName("connect_error"), func(errs ...any) {
		err, _ := firstArg(errs).(error)
		if err == nil {
			err = errors.New("connect_error")
		}
		select {
		case connectChan <- err:
		default:
		}
	})
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &connection{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, ctx.Err()
	case <-time.After(p.timeout):
		io.Disconnect()
		return nil, fmt.Errorf("%w after %v waiting for connection", ErrTimeout, p.timeout)
	}
}

// roundTrip emits one sequenced message and waits for its echo. Replies
// with a different sequence number are ignored.
func (c *connection) roundTrip(ctx context.Context, p params, seq int, payload string) (time.Duration, error) {
	replies := make(chan any, 1)
	var listener types.Listener = func(data ...any) {
		select {
		case replies <- firstArg(data):
		default:
		}
	}
	if err := c.io.On(eventName(p.replyEvent), listener); err != nil {
		return 0, fmt.Errorf("listening for %q: %w", p.replyEvent, err)
	}
	defer c.io.RemoveListener(eventName(p.replyEvent), listener)

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	start := time.Now()
	if err := c.io.Emit(p.event, map[string]any{"seq": seq, "data": payload}); err != nil {
		return 0, fmt.Errorf("emitting %q: %w", p.event, err)
	}
	for {
		select {
		case data := <-replies:
			if matchesSeq(data, seq) {
				return time.Since(start), nil
			}
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-timer.C:
			return 0, fmt.Errorf("%w after %v waiting for event %q", ErrTimeout, p.timeout, p.replyEvent)
		}
	}
}

// matchesSeq reports whether a reply echoes seq. Replies without a
// sequence number are accepted.
func matchesSeq(data any, seq int) bool {
	m, ok := data.(map[string]any)
	if !ok {
		return true
	}
	switch v := m["seq"].(type) {
	case float64:
		return int(v) == seq
	case int:
		return v == seq
	case nil:
		return true
	}
	return false
}

func firstArg(args []any) any {
	if len(args) == 0 {
		return nil
	}
	return args[0]
}
