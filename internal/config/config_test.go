package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_PortOnly(t *testing.T) {
	cfg, err := Parse([]string{"8080"})
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 1, cfg.Workers)
	require.Equal(t, HybridNone, cfg.Hybrid)
	require.Empty(t, cfg.Durability)
}

func TestParse_PortAndWorkers(t *testing.T) {
	cfg, err := Parse([]string{"-hybrid=a", "9090", "4"})
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, 4, cfg.Workers)
	require.Equal(t, HybridA, cfg.Hybrid)
}

func TestParse_MissingPort(t *testing.T) {
	_, err := Parse([]string{})
	require.Error(t, err)
}

func TestParse_InvalidHybrid(t *testing.T) {
	_, err := Parse([]string{"-hybrid=bogus", "8080"})
	require.Error(t, err)
}

func TestParse_SeedAndDurability(t *testing.T) {
	cfg, err := Parse([]string{"-seed=50", "-durability=localhost:6379", "8080"})
	require.NoError(t, err)
	require.Equal(t, 50, cfg.Seed)
	require.Equal(t, "localhost:6379", cfg.Durability)
}
