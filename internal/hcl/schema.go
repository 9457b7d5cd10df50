package hcl

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot is used to decode all top-level blocks from a script.
type fileRoot struct {
	Sweeps []*Sweep `hcl:"sweep,block"`
	Remain hcl.Body `hcl:",remain"`
}

// Sweep represents a `sweep` block: the benchmark to run and the factors
// to sweep it over.
type Sweep struct {
	Benchmark     string    `hcl:"benchmark,label"`
	Name          string    `hcl:"name,label"`
	SystemFactors *bool     `hcl:"system_factors,optional"`
	OptimiseOrder []string  `hcl:"optimise_order,optional"`
	Factors       []*Factor `hcl:"factor,block"`
}

// Factor represents a `factor` block. Exactly one of Values and Range must
// be set.
type Factor struct {
	Name   string         `hcl:"name,label"`
	Type   string         `hcl:"type"`
	Values hcl.Expression `hcl:"values,optional"`
	Range  hcl.Expression `hcl:"range,optional"`
}
