package app

import (
	"ai_mentor_client/internal/config"
	"ai_mentor_client/internal/gateway"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reloaded(baseURL string) *config.Config {
	return &config.Config{
		Backend: config.BackendConfig{BaseURL: baseURL},
		Storage: config.StorageConfig{Driver: "sqlite", TokenKey: "token"},
	}
}

func TestReloadKeepsCommandLineBackend(t *testing.T) {
	a := &App{
		Config:  &config.Config{Overrides: config.Overrides{BackendURL: "http://127.0.0.1:5000", Port: "9001"}},
		Backend: gateway.New(config.BackendConfig{BaseURL: "http://127.0.0.1:5000"}),
	}
	var got *config.Config
	a.RegisterConfigCallback(func(c *config.Config) {
		got = c
		a.Backend.Apply(c.Backend)
	})

	a.reloadConfig(reloaded("http://backend.example:4000"))

	require.NotNil(t, got)
	assert.Equal(t, "http://127.0.0.1:5000", got.Backend.BaseURL)
	assert.Equal(t, "9001", got.Server.Port)
	assert.Equal(t, "http://127.0.0.1:5000", a.Backend.BaseURL())
}

func TestReloadWithoutOverridesUsesFile(t *testing.T) {
	a := &App{Config: &config.Config{}}
	var got *config.Config
	a.RegisterConfigCallback(func(c *config.Config) { got = c })

	a.reloadConfig(reloaded("http://backend.example:4000"))

	require.NotNil(t, got)
	assert.Equal(t, "http://backend.example:4000", got.Backend.BaseURL)
}

func TestReloadInvalidConfigSkipsCallbacks(t *testing.T) {
	a := &App{Config: &config.Config{}}
	called := false
	a.RegisterConfigCallback(func(*config.Config) { called = true })

	a.reloadConfig(reloaded("not a url"))
	assert.False(t, called)
}
