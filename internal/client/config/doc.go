// Package config loads runtime configuration for the geosync client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
//	{
//	  "server_base_url": "http://127.0.0.1:8080",
//	  "endpoint_suffix": "",
//	  "device_code": "office-1",
//	  "database_path": "geosync.db",
//	  "online_check_interval": "3s",
//	  "request_timeout": "10s",
//	  "reset_token": "",
//	  "log_file": ""
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
