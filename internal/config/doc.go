// Package config defines the format-agnostic model of a sweep script, along
// with the Loader interface that script formats implement.
//
// A Model holds one Sweep per `sweep` block: the benchmark it targets and
// the configuration.Set the script supplies. Concrete loaders for HCL and
// YAML live in separate packages and share BuildFactor to turn a typed
// factor declaration into a factor.Factor.
package config
