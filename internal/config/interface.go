package config

import (
	"context"
	"fmt"
)

// Loader is the interface for a format-specific script loader.
type Loader interface {
	// Load reads every script of its format found under paths and
	// translates them into the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

type chain []Loader

// Chain returns a Loader that runs every loader over the same paths and
// concatenates their sweeps in loader order.
func Chain(loaders ...Loader) Loader {
	return chain(loaders)
}

func (c chain) Load(ctx context.Context, paths ...string) (*Model, error) {
	model := &Model{}
	for _, l := range c {
		m, err := l.Load(ctx, paths...)
		if err != nil {
			return nil, err
		}
		if err := model.Append(m); err != nil {
			return nil, fmt.Errorf("merging scripts: %w", err)
		}
	}
	return model, nil
}
