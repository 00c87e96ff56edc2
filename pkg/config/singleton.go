package config

import (
	"fmt"
	"sync"
)

// current is the configuration the process runs with. The run command sets
// it once flags are merged; reloads replace it.
var (
	currentMu sync.RWMutex
	current   *Config
)

// GetConfig returns the active configuration, or nil before SetConfig.
func GetConfig() *Config {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}

// SetConfig installs cfg as the active configuration.
func SetConfig(cfg *Config) {
	currentMu.Lock()
	current = cfg
	currentMu.Unlock()
}

// ReloadConfig re-reads path with environment overrides and installs the
// result. A file that fails to load or validate leaves the active
// configuration in place.
func ReloadConfig(path string) error {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("reload %s: %w", path, err)
	}
	SetConfig(cfg)
	return nil
}
