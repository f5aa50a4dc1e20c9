package main

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/finauth/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withConfig(t *testing.T, fn func() (*config.Config, error)) {
	t.Helper()
	orig := loadConfig
	loadConfig = fn
	t.Cleanup(func() { loadConfig = orig })
}

func TestRun_ConfigError(t *testing.T) {
	withConfig(t, func() (*config.Config, error) {
		return nil, errors.New("access and refresh secrets must differ")
	})

	err := run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secrets must differ")
}

func TestRun_BadLogLevel(t *testing.T) {
	withConfig(t, func() (*config.Config, error) {
		c := &config.Config{}
		c.LoadDefaults()
		c.LogLevel = "loud"
		return c, nil
	})

	assert.Error(t, run(context.Background()))
}
