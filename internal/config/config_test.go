package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beltranomeara/guessgame/internal/game"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{
		"APP_ENV", "LOG_LEVEL", "LOG_FORMAT", "PORT", "HTTP_ADDR", "DB_PATH", "DEFAULT_MODE",
		"POKEMON_POLICY", "SECRET_SOURCE", "DAILY_SALT", "POKEAPI_BASE_URL", "POKEAPI_TIMEOUT",
	} {
		t.Setenv(k, "")
	}

	c, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":3000", c.HTTP.Addr)
	assert.Equal(t, "json", c.Log.Format)
	assert.Equal(t, game.ModePokemon, c.Game.DefaultMode)
	assert.Equal(t, game.PolicySingle, c.Game.Policy)
	assert.Equal(t, "random", c.Game.SecretSource)
	assert.Empty(t, c.DB.Path)
	assert.True(t, c.DB.RunMigrations)
	assert.Equal(t, 10*time.Second, c.PokeAPI.Timeout)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DEFAULT_MODE", "numeric")
	t.Setenv("POKEMON_POLICY", "multi")
	t.Setenv("POKEAPI_TIMEOUT", "3s")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("DB_PATH", "./data/game.db")

	c, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8081", c.HTTP.Addr)
	assert.Equal(t, game.ModeNumeric, c.Game.DefaultMode)
	assert.Equal(t, game.PolicyMulti, c.Game.Policy)
	assert.Equal(t, 3*time.Second, c.PokeAPI.Timeout)
	assert.False(t, c.DB.RunMigrations)
	assert.Equal(t, "./data/game.db", c.DB.Path)
}

func TestLoadFromEnv_Rejects(t *testing.T) {
	cases := map[string][2]string{
		"bad mode":       {"DEFAULT_MODE", "chess"},
		"bad policy":     {"POKEMON_POLICY", "sometimes"},
		"bad source":     {"SECRET_SOURCE", "weekly"},
		"bad log format": {"LOG_FORMAT", "xml"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := LoadFromEnv()
			require.Error(t, err)
		})
	}
}

func TestValidate_DailySaltInProd(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("SECRET_SOURCE", "daily")
	t.Setenv("DAILY_SALT", "")
	_, err := LoadFromEnv()
	require.Error(t, err)

	t.Setenv("DAILY_SALT", "s3cret")
	_, err = LoadFromEnv()
	require.NoError(t, err)
}
