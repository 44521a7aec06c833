// Package config loads onair's TOML configuration.
//
// Load reads ~/.config/onair/config.toml unless a path is given. A missing
// file is not an error; defaults are used. Empty or zero values fall back to
// their defaults too, and paths starting with ~ are expanded.
//
// Precedence, lowest first:
//
//  1. built-in defaults
//  2. config.toml
//  3. the NHK_API_KEY environment variable (api_key only)
//  4. command-line flags, applied by the caller with Config.Apply
//
// Example config.toml:
//
//	area = "400"
//	api_key = "..."
//	refresh_seconds = 60
//	request_timeout_seconds = 10
//	workers = 4
//	queue_size = 64
//	metrics_addr = "127.0.0.1:9464"
//
//	[log]
//	level = "debug"
//	format = "console"
//	file = "~/.local/state/onair/onair.log"
//	max_size_mb = 10
//	max_backups = 3
//	max_age_days = 14
//	compress = false
package config
