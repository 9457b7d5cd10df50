// Package env_vars turns environment variables into system factors so that
// facts the harness cannot discover itself (driver version, rack, build id)
// are recorded next to every configuration.
//
// GRIDBENCH_FACT_DRIVER_VERSION=535.104 becomes the factor driver_version.
package env_vars

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/gridbench/internal/sysfactor"
	"github.com/vk/gridbench/internal/variant"
)

// Prefix marks the environment variables that are exported as facts.
const Prefix = "GRIDBENCH_FACT_"

// RegisterFacts registers one provider per prefixed entry of environ, which
// has the form returned by os.Environ. A fact that collides with an already
// registered provider is reported and skipped.
func RegisterFacts(reg *sysfactor.Registry, environ []string, prefix string) ([]string, error) {
	var (
		names []string
		errs  []error
	)
	for _, e := range environ {
		key, value, ok := strings.Cut(e, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(key, prefix))
		if name == "" {
			continue
		}
		v := variant.Of(value)
		if err := reg.Register(name, func() (variant.Variant, error) { return v, nil }); err != nil {
			errs = append(errs, fmt.Errorf("environment variable %s: %w", key, err))
			continue
		}
		names = append(names, name)
	}
	return names, errors.Join(errs...)
}
