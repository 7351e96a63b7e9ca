package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdoElHodaky/matchcore/internal/config"
)

// Load is guarded by a package-level sync.Once, so only the first call in
// the whole test binary actually reads configuration; this is the one
// exercise of that path available to a single test process.
func TestLoadAppliesDefaultsWithNoConfigFilePresent(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "GTC", cfg.Engine.DefaultTIF)
	assert.Equal(t, 100, cfg.Engine.CascadeDepthLimit)
	assert.Equal(t, "matchcore-events.log", cfg.EventLog.Path)
	assert.Equal(t, ":9090", cfg.Metrics.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestInitLoggerSwitchesOnLevel(t *testing.T) {
	cfg := &config.Config{}
	cfg.LogLevel = "debug"
	logger, err := config.InitLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)

	cfg.LogLevel = "info"
	logger, err = config.InitLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
