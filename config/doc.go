// Package config provides the simulation run configuration.
//
// Configuration is a plain struct with YAML tags, loadable from a file
// and validated before use. Defaults cover a full run so the binary works
// with no config file at all:
//
//	cfg := config.Default()
//	cfg.Scenario = "downtown"
//	if err := cfg.Validate(); err != nil { ... }
//
// or from disk:
//
//	cfg, err := config.Load("transitsim.yaml")
//
// Validation failures are classified fatal: a run never starts on a bad
// configuration.
package config
