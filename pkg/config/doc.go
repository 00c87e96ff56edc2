// Package config provides configuration management for the RSS proxy.
//
// Configuration is read from a YAML file. JSON is a subset of YAML, so the
// historical format is still accepted:
//
//	{"port": 8080, "threads": 4, "timeout": 1000}
//
// # Configuration Loading
//
//  1. From a file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention RSSPROXY_SECTION_FIELD:
//
//   - RSSPROXY_PORT overrides port
//   - RSSPROXY_SERVER_LISTEN_HOST overrides server.listen_host
//   - RSSPROXY_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
// Later steps override earlier ones:
//
//  1. Default values (defined in defaults.go)
//  2. Values from the file
//  3. Environment variable overrides
//  4. Command line flags (applied by the run command)
//  5. Validation (fails fast if invalid)
//
// # Hot Reload
//
// Watcher observes the file with fsnotify and reloads it after a debounce
// interval. Only the fetch timeout is applied to a running proxy; listener
// settings need a restart.
package config
