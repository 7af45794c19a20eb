package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration from environment variables, loading a
// local .env file first if one exists. Unset variables keep the previous
// layer's values; malformed durations and booleans are ignored rather than
// fatal.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("AUTH_ENDPOINT_ADDR"); v != "" {
		config.EndpointAddr = v
	}
	if v := os.Getenv("AUTH_DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("AUTH_SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("AUTH_ACCESS_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.AccessTokenTTL = d
		}
	}
	if v := os.Getenv("AUTH_REFRESH_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.RefreshTokenTTL = d
		}
	}
	if v := os.Getenv("AUTH_ALLOWED_ORIGINS"); v != "" {
		origins := make([]string, 0)
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		config.AllowedOrigins = origins
	}
	if v := os.Getenv("AUTH_BOOTSTRAP_ADMIN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.BootstrapAdmin = b
		}
	}
}
