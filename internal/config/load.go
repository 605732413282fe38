package config

import "fmt"

// Load layers the config file at path (or the default path when empty)
// and the environment over cfg, skipping changed flags. It returns the file
// path that was read, or "" when no file exists.
func Load(cfg *Config, path string, changed map[string]bool) (string, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	used := ""
	if path != "" && FileExists(path) {
		fc, err := LoadFileConfig(path)
		if err != nil {
			return "", fmt.Errorf("load config: %w", err)
		}
		if err := ApplyFileConfig(cfg, fc, changed); err != nil {
			return "", err
		}
		used = path
	}
	if err := ApplyEnvConfig(cfg, changed); err != nil {
		return "", fmt.Errorf("environment: %w", err)
	}
	return used, nil
}
