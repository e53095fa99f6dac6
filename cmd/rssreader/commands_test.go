package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"rssreader/internal/infrastructure/config"
)

func TestRootAppCommands(t *testing.T) {
	names := []string{}
	for _, c := range rootApp().Commands {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"serve", "fetch", "migrate"}, names)
}

func TestMigrateRequiresDatabase(t *testing.T) {
	t.Setenv("RSSREADER_CONFIG", "")

	err := rootApp().Run([]string{"rssreader", "migrate"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is not configured")
}

func TestMissingConfigFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	err := rootApp().Run([]string{"rssreader", "--config", missing, "fetch"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

// captureServerConfig подменяет запуск сервера сбором итогового конфига.
func captureServerConfig(got **config.Config) *cli.App {
	capture := func(ctx *cli.Context) error {
		cfg, err := serverConfig(ctx)
		*got = cfg
		return err
	}
	a := rootApp()
	a.Action = capture
	for _, c := range a.Commands {
		if c.Name == "serve" {
			c.Action = capture
		}
	}
	return a
}

func TestServeAddressFromEnv(t *testing.T) {
	t.Setenv("RSSREADER_CONFIG", "")
	t.Setenv("RSSREADER_PORT", "")
	require.NoError(t, os.Unsetenv("RSSREADER_PORT"))
	t.Setenv("PORT", "8123")
	t.Setenv("RSSREADER_HOST", "127.0.0.1")

	for _, args := range [][]string{{"rssreader"}, {"rssreader", "serve"}} {
		var cfg *config.Config
		require.NoError(t, captureServerConfig(&cfg).Run(args))

		require.NotNil(t, cfg)
		assert.Equal(t, 8123, cfg.HTTP.Port, args)
		assert.Equal(t, "127.0.0.1", cfg.HTTP.Host, args)
	}
}

func TestServeAddressFromFlags(t *testing.T) {
	t.Setenv("RSSREADER_CONFIG", "")

	var cfg *config.Config
	require.NoError(t, captureServerConfig(&cfg).Run([]string{"rssreader", "--port", "9000"}))
	assert.Equal(t, 9000, cfg.HTTP.Port)

	require.NoError(t, captureServerConfig(&cfg).Run([]string{"rssreader", "serve", "--port", "9001"}))
	assert.Equal(t, 9001, cfg.HTTP.Port)
}
