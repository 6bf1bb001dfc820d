package shared

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"prod"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":4000"`
	Port        string `env:"PORT"`
	MetricsAddr string `env:"METRICS_ADDR"`
	MySQLDSN    string `env:"MYSQL_DSN" envDefault:"root:root@tcp(localhost:3306)/staysearch?parseTime=true&loc=UTC&charset=utf8mb4"`
	RedisAddr   string `env:"REDIS_ADDR"`
	RedisPass   string `env:"REDIS_PASSWORD"`
	RedisDB     int    `env:"REDIS_DB" envDefault:"0"`
	ImagesDir   string `env:"IMAGES_DIR" envDefault:"./public/images"`

	CacheTTLSeconds int           `env:"CACHE_TTL_SECONDS" envDefault:"60"`
	ConnectTimeout  time.Duration `env:"STORE_CONNECT_TIMEOUT" envDefault:"5s"`
	QueryTimeout    time.Duration `env:"STORE_QUERY_TIMEOUT" envDefault:"3s"`
	ProbeInterval   time.Duration `env:"STORE_PROBE_INTERVAL" envDefault:"5s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
}

func (c Config) CacheTTL() time.Duration { return time.Duration(c.CacheTTLSeconds) * time.Second }

// Parse reads the configuration from the environment.
func Parse() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if c.Port != "" {
		c.HTTPAddr = ":" + c.Port
	}
	if c.RedisAddr == "" {
		log.Warn().Msg("REDIS_ADDR is empty, search result cache disabled")
	}
	return c, nil
}

// Load is Parse for binaries: a malformed environment is fatal.
func Load() Config {
	c, err := Parse()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	return c
}
