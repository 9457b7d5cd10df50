package http_client

import (
	"net/http"
	"time"
)

// client is the long-lived HTTP client shared by consecutive configurations.
type client struct {
	*http.Client
	timeoutMS uint32
}

// createHttpClient builds a pooled client with the given timeout.
func createHttpClient(timeoutMS uint32) *client {
	return &client{
		Client: &http.Client{
			Timeout: time.Duration(timeoutMS) * time.Millisecond,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeoutMS: timeoutMS,
	}
}

// destroyHttpClient closes any idle connections of c.
func destroyHttpClient(c *client) {
	if c != nil {
		c.CloseIdleConnections()
	}
}
