package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gridmesh/authcore/internal/flagx"
)

// duration accepts either a Go duration string ("15m") or integer
// nanoseconds in JSON.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("invalid duration: %s", string(b))
	}
}

// jsonConfig is the file-shaped view of Config. Zero values mean "keep the
// previous layer".
type jsonConfig struct {
	EndpointAddr    string   `json:"endpoint_addr"`
	DatabaseDSN     string   `json:"database_dsn"`
	SecretKey       string   `json:"secret_key"`
	AccessTokenTTL  duration `json:"access_token_ttl"`
	RefreshTokenTTL duration `json:"refresh_token_ttl"`
	AllowedOrigins  []string `json:"allowed_origins"`
	BootstrapAdmin  *bool    `json:"bootstrap_admin"`
}

// parseJson overlays configuration from the JSON file named by the -c or
// -config flags. A missing flag means no file is loaded; an unreadable or
// invalid file panics, since running with half-applied config is worse than
// not starting.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &jsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenTTL.Duration != 0 {
		config.AccessTokenTTL = c.AccessTokenTTL.Duration
	}
	if c.RefreshTokenTTL.Duration != 0 {
		config.RefreshTokenTTL = c.RefreshTokenTTL.Duration
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.BootstrapAdmin != nil {
		config.BootstrapAdmin = *c.BootstrapAdmin
	}
}
