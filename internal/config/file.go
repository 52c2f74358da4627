package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the optional on-disk configuration, read from
// ~/.config/scanpad/config.yaml.
type File struct {
	// DeviceName overrides the advertised name to scan for.
	DeviceName string `yaml:"device_name"`
	// TimeoutSeconds overrides the per-command response timeout.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	GitHub GitHub `yaml:"github"`
}

// GitHub configures where firmware releases are fetched from.
type GitHub struct {
	Repo  string `yaml:"repo"`
	Token string `yaml:"token"`
}

// Defaults returns the configuration used when no file exists.
func Defaults() File {
	return File{
		DeviceName:     "aRdent ScanPad",
		TimeoutSeconds: 5,
		GitHub: GitHub{
			Repo: "getyourway/aRdent-ScanPad",
		},
	}
}

// Path returns the config file location.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config", "scanpad", "config.yaml"), nil
}

// Load reads the config file, falling back to defaults when it does not
// exist. Unset fields keep their default values.
func Load() (File, error) {
	path, err := Path()
	if err != nil {
		return Defaults(), err
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file from an explicit path.
func LoadFrom(path string) (File, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Defaults(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.DeviceName == "" {
		cfg.DeviceName = Defaults().DeviceName
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = Defaults().TimeoutSeconds
	}
	return cfg, nil
}

// Timeout converts the configured timeout to a duration.
func (f File) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}
