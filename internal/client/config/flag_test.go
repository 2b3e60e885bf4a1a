package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd", "-a", "http://sync.example", "-x", ".php", "-d", "dev-9", "-f", "/tmp/g.db",
				"-i", "10", "-t", "4", "-r", "secret", "-l", "/tmp/g.log"},
			expected: &Config{
				ServerBaseURL:       "http://sync.example",
				EndpointSuffix:      ".php",
				DeviceCode:          "dev-9",
				DatabasePath:        "/tmp/g.db",
				OnlineCheckInterval: 10 * time.Second,
				RequestTimeout:      4 * time.Second,
				ResetToken:          "secret",
				LogFile:             "/tmp/g.log",
			},
		},
		{
			name:     "unknown flags are ignored",
			args:     []string{"cmd", "-c", "cfg.json", "-a", "http://x", "-i", "1", "-t", "2"},
			expected: &Config{ServerBaseURL: "http://x", OnlineCheckInterval: time.Second, RequestTimeout: 2 * time.Second},
		},
		{name: "incorrect check interval", args: []string{"cmd", "-a", "http://x", "-i", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
