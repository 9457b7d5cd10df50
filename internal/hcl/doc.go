// Package hcl provides the HCL implementation of config.Loader. It parses
// `sweep` blocks and their `factor` declarations into the format-agnostic
// config model.
package hcl
