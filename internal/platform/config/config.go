package config

import (
	"os"
	"time"
)

// Server captures process level configuration: where to listen and which
// backing services to attach. Decision policy lives in its own YAML file so
// operators can tune thresholds without touching infrastructure settings.
type Server struct {
	Addr        string
	PostgresDSN string
	RedisAddr   string
	PolicyPath  string
}

// CaseCacheTTL bounds how long a case record may live in the Redis cache.
var CaseCacheTTL = 10 * time.Minute

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("VERIDOC_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	return Server{
		Addr:        addr,
		PostgresDSN: os.Getenv("VERIDOC_POSTGRES_DSN"),
		RedisAddr:   os.Getenv("VERIDOC_REDIS_ADDR"),
		PolicyPath:  os.Getenv("VERIDOC_POLICY_PATH"),
	}
}
