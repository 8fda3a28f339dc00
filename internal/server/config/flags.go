package config

import (
	"flag"
	"os"
	"time"

	"github.com/readnest/readnest/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-f string   data directory for the JSON fallback store
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-w int      feed fetch timeout, seconds
//	-n int      max entries retained per feed fetch
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers and converted to time.Duration.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-f", "-s", "-t", "-w", "-n"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Addr, "a", config.Addr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.DataDir, "f", config.DataDir, "fallback data directory")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidityDuration := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token_validity_duration (in minutes)")
	fetchTimeout := fs.Int("w", int(config.FetchTimeout.Seconds()), "fetch_timeout (in seconds)")

	fs.IntVar(&config.MaxFeedEntries, "n", config.MaxFeedEntries, "max entries per feed fetch")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidityDuration) * time.Minute
	config.FetchTimeout = time.Duration(*fetchTimeout) * time.Second
}
