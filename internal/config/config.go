package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is read from DOD_* environment variables, after .env is loaded.
type Config struct {
	APIURL      string        `envconfig:"API_URL" default:"http://localhost:8080/api/v1"`
	Timeout     time.Duration `envconfig:"TIMEOUT" default:"15s"`
	Credentials string        `envconfig:"CREDENTIALS"`
	Debug       bool          `envconfig:"DEBUG" default:"false"`
	Theme       string        `envconfig:"THEME" default:"classic"`
}

// Load reads .env from the working directory (if present), then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("dod", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
