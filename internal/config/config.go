package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/beltranomeara/guessgame/internal/game"
)

// Config describes all runtime settings for the server.
// Loaded once in main, validated, then passed down explicitly.
type Config struct {
	Env string // dev|prod

	Log struct {
		Level  string // zerolog level name
		Format string // json|text
	}

	HTTP struct {
		Addr              string
		ClientOrigin      string
		HandlerTimeout    time.Duration
		ReadHeaderTimeout time.Duration
		IdleTimeout       time.Duration
		ShutdownTimeout   time.Duration
	}

	DB struct {
		Path          string // empty → in-memory ledger
		RunMigrations bool
	}

	Game struct {
		DefaultMode  game.Mode
		Policy       game.Policy
		SecretSource string // random|daily
		DailySalt    string
	}

	PokeAPI struct {
		BaseURL string
		Timeout time.Duration
	}
}

func LoadFromEnv() (Config, error) {
	var c Config

	c.Env = envString("APP_ENV", "dev")
	c.Log.Level = envString("LOG_LEVEL", "info")
	c.Log.Format = envString("LOG_FORMAT", "json")

	port := envString("PORT", "3000")
	c.HTTP.Addr = envString("HTTP_ADDR", ":"+port)
	c.HTTP.ClientOrigin = envString("CLIENT_ORIGIN", "http://localhost:5173")
	c.HTTP.HandlerTimeout = envDuration("HANDLER_TIMEOUT", 15*time.Second)
	c.HTTP.ReadHeaderTimeout = envDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second)
	c.HTTP.IdleTimeout = envDuration("HTTP_IDLE_TIMEOUT", 60*time.Second)
	c.HTTP.ShutdownTimeout = envDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second)

	c.DB.Path = os.Getenv("DB_PATH")
	c.DB.RunMigrations = envBool("RUN_MIGRATIONS", true)

	c.Game.DefaultMode = game.Mode(envString("DEFAULT_MODE", string(game.ModePokemon)))
	c.Game.Policy = game.Policy(envString("POKEMON_POLICY", string(game.PolicySingle)))
	c.Game.SecretSource = envString("SECRET_SOURCE", "random")
	c.Game.DailySalt = envString("DAILY_SALT", "local_dev_salt")

	c.PokeAPI.BaseURL = envString("POKEAPI_BASE_URL", "https://pokeapi.co/api/v2")
	c.PokeAPI.Timeout = envDuration("POKEAPI_TIMEOUT", 10*time.Second)

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("HTTP addr is empty")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("unsupported LOG_FORMAT=%q (want text|json)", c.Log.Format)
	}
	if m, err := game.ParseMode(string(c.Game.DefaultMode)); err != nil || m == "" {
		return fmt.Errorf("unsupported DEFAULT_MODE=%q (want numeric|pokemon)", c.Game.DefaultMode)
	}
	if c.Game.Policy != game.PolicySingle && c.Game.Policy != game.PolicyMulti {
		return fmt.Errorf("unsupported POKEMON_POLICY=%q (want single|multi)", c.Game.Policy)
	}
	if c.Game.SecretSource != "random" && c.Game.SecretSource != "daily" {
		return fmt.Errorf("unsupported SECRET_SOURCE=%q (want random|daily)", c.Game.SecretSource)
	}
	if c.Game.SecretSource == "daily" && c.Env != "dev" && c.Game.DailySalt == "local_dev_salt" {
		return fmt.Errorf("refuse to run daily secrets with default DAILY_SALT in %s", c.Env)
	}
	if c.PokeAPI.BaseURL == "" {
		return errors.New("POKEAPI_BASE_URL is empty")
	}
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
