package config

import (
	"flag"
	"os"

	"github.com/vibecast/vibecast/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string    HTTP bind address
//	-d string    PostgreSQL DSN
//	-r string    Redis address for the change feed
//	-f string    Firebase credentials file
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-r", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.EndpointAddrHTTP, "a", cfg.EndpointAddrHTTP, "address and port to bind the HTTP API")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "PostgreSQL DSN")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "Redis address for the change feed")
	fs.StringVar(&cfg.FCMCredentialsFile, "f", cfg.FCMCredentialsFile, "Firebase service-account credentials file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
