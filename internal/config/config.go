// Package config loads server configuration from an optional yaml file with
// environment-variable overrides.
package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env       string         `yaml:"env" env:"APP_ENV" env-default:"local"`
	ClientURL string         `yaml:"client_url" env:"CLIENT_URL" env-default:"http://localhost:5173"`
	HTTP      HTTPConfig     `yaml:"http"`
	Database  DatabaseConfig `yaml:"database"`
	Fitbit    FitbitConfig   `yaml:"fitbit"`
	Session   SessionConfig  `yaml:"session"`
}

type HTTPConfig struct {
	Host string `yaml:"host" env:"HOST" env-default:"127.0.0.1"`
	Port int    `yaml:"port" env:"PORT" env-default:"8000"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" env:"DB_PATH" env-default:"pulsefit.db"`
}

// FitbitConfig is the registered Fitbit application identity. All three
// values come from the Fitbit developer console and are never hardcoded.
type FitbitConfig struct {
	ClientID     string `yaml:"client_id" env:"FITBIT_CLIENT_ID" env-required:"true"`
	ClientSecret string `yaml:"client_secret" env:"FITBIT_CLIENT_SECRET" env-required:"true"`
	RedirectURI  string `yaml:"redirect_uri" env:"FITBIT_REDIRECT_URI" env-required:"true"`
}

type SessionConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"SESSION_TOKEN_TTL" env-default:"24h"`
}

// MustLoad reads configuration and panics on failure. A config file path may
// be given via the -config flag or CONFIG_PATH; without one, environment
// variables alone must satisfy the required fields.
func MustLoad() *Config {
	var cfg Config

	path := fetchConfigPath()
	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			panic("config path does not exist: " + path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			panic(err)
		}
		return &cfg
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic(err)
	}
	return &cfg
}

// Priority: flag > env
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	return res
}
