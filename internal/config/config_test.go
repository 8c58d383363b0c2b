package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "rules", cfg.InsightProvider)
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("EMPOWHER_HTTP_PORT", "9191")
	t.Setenv("EMPOWHER_DB_DRIVER", "postgres")
	t.Setenv("EMPOWHER_POSTGRES_DSN", "postgres://localhost/empowher_test")
	t.Setenv("EMPOWHER_INSIGHT_PROVIDER", "ollama")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.HTTPPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "ollama", cfg.InsightProvider)
}

func TestResolveDefaults_Rejections(t *testing.T) {
	cases := map[string]*Config{
		"unknown driver":       {DBDriver: "spanner", InsightProvider: "rules"},
		"postgres without dsn": {DBDriver: "postgres", InsightProvider: "rules"},
		"sqlite without path":  {DBDriver: "sqlite", InsightProvider: "rules"},
		"unknown provider":     {DBDriver: "sqlite", SQLitePath: "x.db", InsightProvider: "gpt"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, cfg.ResolveDefaults())
		})
	}
}

func TestNewForTesting(t *testing.T) {
	cfg := NewForTesting()
	require.NoError(t, cfg.ResolveDefaults())
	assert.Equal(t, EnvTesting, cfg.Environment)
}
