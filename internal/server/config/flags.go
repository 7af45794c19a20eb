package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/gridmesh/authcore/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token lifetime, minutes
//	-r int      refresh token lifetime, days
//	-o string   comma-separated allowed CORS origins
//
// os.Args is filtered to just these flags first, so flags owned by other
// components (like -c/-config) pass through untouched.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-r", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenMinutes := fs.Int("t", int(config.AccessTokenTTL.Minutes()), "access token lifetime (in minutes)")
	refreshTokenDays := fs.Int("r", int(config.RefreshTokenTTL.Hours()/24), "refresh token lifetime (in days)")
	origins := fs.String("o", strings.Join(config.AllowedOrigins, ","), "allowed CORS origins (comma-separated)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenTTL = time.Duration(*accessTokenMinutes) * time.Minute
	config.RefreshTokenTTL = time.Duration(*refreshTokenDays) * 24 * time.Hour
	if *origins != "" {
		config.AllowedOrigins = strings.Split(*origins, ",")
	}
}
