package app

import (
	"github.com/vk/gridbench/internal/config"
	"github.com/vk/gridbench/internal/hcl"
	"github.com/vk/gridbench/internal/yaml"
	"github.com/zclconf/go-cty/cty"
)

// DefaultLoader reads HCL scripts followed by YAML scripts from the same
// paths. cfg.Vars become string values of the HCL `var` object.
func DefaultLoader(cfg *Config) config.Loader {
	var vars map[string]cty.Value
	if len(cfg.Vars) > 0 {
		vars = make(map[string]cty.Value, len(cfg.Vars))
		for k, v := range cfg.Vars {
			vars[k] = cty.StringVal(v)
		}
	}
	return config.Chain(hcl.NewLoader(vars), yaml.NewLoader())
}
