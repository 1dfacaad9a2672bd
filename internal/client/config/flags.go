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
//	-a string    base URL of the Vibecast server API
//	-u string    sender account identifier
//	-d string    path to the queue database file
//	-s string    staging directory
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-u", "-d", "-s"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the server API")
	fs.StringVar(&cfg.SenderID, "u", cfg.SenderID, "sender account identifier")
	fs.StringVar(&cfg.QueueDBPath, "d", cfg.QueueDBPath, "queue database file")
	fs.StringVar(&cfg.StagingDir, "s", cfg.StagingDir, "staging directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
