// Package config loads runtime configuration for the drive shell.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string     base URL of the drive REST API
//	-t string     bearer token; prompted for when empty
//	-r duration   per-request timeout
//	-i int        online status check interval (seconds)
//
// # JSON schema
//
// Durations use timex.Duration, so both "3s" and integer nanoseconds work:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "token": "eyJhbGciOi...",
//	  "request_timeout": "10s",
//	  "online_check_interval": "3s"
//	}
package config
