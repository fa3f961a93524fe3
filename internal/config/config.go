// Package config loads server configuration from a file and the
// environment. Every key can be overridden with a HAKARI_-prefixed
// environment variable (dots become underscores).
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the full server configuration.
type Config struct {
	HTTP struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"http"`

	Transport struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"transport"`

	Discord struct {
		Token string `mapstructure:"token"`
	} `mapstructure:"discord"`

	Mongo struct {
		URI      string `mapstructure:"uri"`
		Database string `mapstructure:"database"`
	} `mapstructure:"mongo"`

	Auth struct {
		JWTSecret string `mapstructure:"jwt_secret"`
	} `mapstructure:"auth"`

	Image struct {
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"image"`

	Tasks struct {
		Workers int `mapstructure:"workers"`
	} `mapstructure:"tasks"`

	Store struct {
		// Driver selects the document-store backend: "mongo" or "memory".
		Driver string `mapstructure:"driver"`
	} `mapstructure:"store"`

	Log struct {
		Dev bool `mapstructure:"dev"`
	} `mapstructure:"log"`
}

// Load reads the configuration. path may be empty, in which case only
// defaults and the environment apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Keys need a default for AutomaticEnv to surface them through
	// Unmarshal, so even secret-bearing keys get an empty one.
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("transport.addr", ":9090")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "hakari")
	v.SetDefault("image.base_url", "https://hotpink-octopus-624350.hostingersite.com/character/")
	v.SetDefault("tasks.workers", 4)
	v.SetDefault("store.driver", "mongo")
	v.SetDefault("log.dev", false)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("discord.token", "")

	v.SetEnvPrefix("HAKARI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	return &cfg, nil
}

// Validate checks the fields the server cannot start without.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret must be set")
	}
	if c.Store.Driver != "mongo" && c.Store.Driver != "memory" {
		return errors.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Tasks.Workers < 1 {
		return errors.New("tasks.workers must be at least 1")
	}
	return nil
}
