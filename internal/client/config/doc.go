// Package config loads runtime configuration for the libdesk CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file, YAML or JSON, selected with -c/--config or found
//     as libdesk.yaml in the working directory or ~/.libdesk.
//  3. Environment variables LIBDESK_SERVER, LIBDESK_STATE, LIBDESK_TIMEOUT,
//     LIBDESK_LOG_LEVEL and LIBDESK_LOG_FORMAT.
//  4. Command-line flags, when explicitly set.
//
// Supported flags
//
//	-c, --config string      config file
//	-a, --server string      base URL of the library API
//	    --state string       local state database
//	    --timeout duration   per-request timeout, e.g. 10s
//	    --log-level string   debug, info, warn, error
//	    --log-format string  text or json
//
// # File schema
//
//	server: http://127.0.0.1:8000/
//	state: /home/me/.config/libdesk/state.db
//	timeout: 15s
//	log-level: info
//	log-format: json
package config
