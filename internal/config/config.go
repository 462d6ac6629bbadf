// Package config resolves process-level configuration for the rankserver
// binary from CLI flags and positional arguments (no config file format is
// introduced).
package config

import (
	"flag"
	"fmt"
)

// HybridMode selects which derived-score view, if any, is mounted on top of
// the three base views.
type HybridMode string

const (
	HybridNone HybridMode = "none"
	HybridA    HybridMode = "a"
	HybridB    HybridMode = "b"
)

// Config holds the resolved process configuration.
type Config struct {
	Port       int
	Workers    int
	Hybrid     HybridMode
	Seed       int
	Durability string // empty disables the optional write-behind log
}

// Parse resolves Config from args (pass os.Args[1:]). Port is the first
// positional argument and is required; worker count is an optional second
// positional argument defaulting to 1.
func Parse(args []string) (Config, error) {
	fs := flag.NewFlagSet("rankserver", flag.ContinueOnError)
	hybrid := fs.String("hybrid", string(HybridNone), "derived view to mount: none, a, or b")
	seed := fs.Int("seed", 0, "number of synthetic users to insert at startup")
	durability := fs.String("durability", "", "host:port Redis address for the durability stream; empty disables it")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	rest := fs.Args()
	if len(rest) < 1 {
		return Config{}, fmt.Errorf("usage: rankserver [flags] <port> [workers]")
	}

	cfg := Config{
		Workers:    1,
		Hybrid:     HybridMode(*hybrid),
		Seed:       *seed,
		Durability: *durability,
	}

	if _, err := fmt.Sscanf(rest[0], "%d", &cfg.Port); err != nil {
		return Config{}, fmt.Errorf("invalid port %q: %w", rest[0], err)
	}
	if len(rest) >= 2 {
		if _, err := fmt.Sscanf(rest[1], "%d", &cfg.Workers); err != nil {
			return Config{}, fmt.Errorf("invalid worker count %q: %w", rest[1], err)
		}
	}

	switch cfg.Hybrid {
	case HybridNone, HybridA, HybridB:
	default:
		return Config{}, fmt.Errorf("invalid -hybrid value %q: must be none, a, or b", *hybrid)
	}

	return cfg, nil
}
