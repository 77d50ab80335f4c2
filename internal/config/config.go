// Package config reads the exchange's environment-variable configuration,
// logging the resolved values once at startup the way the teacher's
// cmd/server/server.go logs its bind address via zerolog. Mirrors
// original_source/exchange/app/database.py's DATABASE_URL/SQLALCHEMY_ECHO
// env-var configuration style, adapted to this service's own settings.
package config

import (
	"os"
	"strconv"

	"github.com/rs/zerolog"
)

type Config struct {
	DBPath         string
	HTTPAddr       string
	SQLEcho        bool
	MetricsEnabled bool
	OrderBookDepth int
}

const (
	envDBPath   = "EXCHANGE_DB_PATH"
	envHTTPAddr = "EXCHANGE_HTTP_ADDR"
	envSQLEcho  = "EXCHANGE_SQL_ECHO"
	envMetrics  = "EXCHANGE_METRICS_ENABLED"
)

// Load reads configuration from the environment, applying the teacher's
// defaults-then-override pattern.
func Load() Config {
	return Config{
		DBPath:         getEnv(envDBPath, "exchange.db"),
		HTTPAddr:       getEnv(envHTTPAddr, ":8080"),
		SQLEcho:        getBoolEnv(envSQLEcho, false),
		MetricsEnabled: getBoolEnv(envMetrics, false),
		OrderBookDepth: 10,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Log emits the resolved configuration at startup.
func (c Config) Log(log zerolog.Logger) {
	log.Info().
		Str("db_path", c.DBPath).
		Str("http_addr", c.HTTPAddr).
		Bool("sql_echo", c.SQLEcho).
		Bool("metrics_enabled", c.MetricsEnabled).
		Int("order_book_depth", c.OrderBookDepth).
		Msg("configuration loaded")
}
