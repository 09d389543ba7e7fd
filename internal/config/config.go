package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port             int           `envconfig:"PORT" default:"8080"`
	BoardDir         string        `envconfig:"BOARD_DIR" default:"./data/boards"`
	AutosaveInterval time.Duration `envconfig:"AUTOSAVE_INTERVAL" default:"2s"`
	AllowedOrigins   string        `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	SystemClipboard  bool          `envconfig:"SYSTEM_CLIPBOARD" default:"false"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
