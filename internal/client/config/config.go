package config

import "time"

// Config holds runtime settings for the geosync client.
//
// Fields:
//   - ServerBaseURL: base URL of the remote API; empty means "never online".
//   - EndpointSuffix: appended to every API path (".php" for the legacy backend).
//   - DeviceCode: identifier stamped on outbox entries and acknowledgments.
//     Empty means a generated code persisted in the local database is used.
//   - DatabasePath: SQLite file path or DSN.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - RequestTimeout: per-request HTTP timeout.
//   - ResetToken: shared secret sent with a full cloud truncate.
//   - LogFile: rotated log file; empty logs to stderr.
type Config struct {
	ServerBaseURL       string
	EndpointSuffix      string
	DeviceCode          string
	DatabasePath        string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	ResetToken          string
	LogFile             string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.EndpointSuffix = ""
	c.DeviceCode = ""
	c.DatabasePath = "geosync.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.ResetToken = ""
	c.LogFile = ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
