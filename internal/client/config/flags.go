package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/geosync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   remote API base URL
//	-x string   endpoint suffix, e.g. ".php"
//	-d string   device code
//	-f string   local database path
//	-i int      online check interval in seconds
//	-t int      request timeout in seconds
//	-r string   reset token
//	-l string   log file
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-x", "-d", "-f", "-i", "-t", "-r", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "remote API base URL")
	fs.StringVar(&cfg.EndpointSuffix, "x", cfg.EndpointSuffix, "endpoint suffix")
	fs.StringVar(&cfg.DeviceCode, "d", cfg.DeviceCode, "device code")
	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "local database path")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.ResetToken, "r", cfg.ResetToken, "reset token")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "log file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
