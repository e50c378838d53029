package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// UserConfig represents ~/.esmcat/config.yaml.
type UserConfig struct {
	CurrentProfile string             `yaml:"current-profile" json:"current_profile"`
	Profiles       map[string]Profile `yaml:"profiles" json:"profiles"`
}

// Profile represents a single named configuration profile. Storage fields
// only fill in what the environment leaves unset.
type Profile struct {
	Output      string `yaml:"output,omitempty" json:"output,omitempty"`
	LogLevel    string `yaml:"log-level,omitempty" json:"log_level,omitempty"`
	Timeout     string `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	ProbeMethod string `yaml:"probe-method,omitempty" json:"probe_method,omitempty"`
	Endpoint    string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	Region      string `yaml:"region,omitempty" json:"region,omitempty"`
	KeyID       string `yaml:"key-id,omitempty" json:"key_id,omitempty"`
	Secret      string `yaml:"secret,omitempty" json:"secret,omitempty"`
}

// ActiveProfile returns the profile to use based on the override or current-profile.
func (c *UserConfig) ActiveProfile(override string) Profile {
	name := c.CurrentProfile
	if override != "" {
		name = override
	}
	if p, ok := c.Profiles[name]; ok {
		return p
	}
	return Profile{}
}

// ConfigDir returns the path to ~/.esmcat/.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".esmcat")
}

// ConfigPath returns the path to ~/.esmcat/config.yaml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// LoadUserConfig reads ~/.esmcat/config.yaml. A missing file yields an empty
// config whose current profile is "default"; exists reports whether the file
// was there.
func LoadUserConfig() (cfg *UserConfig, exists bool, err error) {
	cfg = &UserConfig{CurrentProfile: "default", Profiles: map[string]Profile{}}
	data, err := os.ReadFile(ConfigPath())
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, true, fmt.Errorf("parse %s: %w", ConfigPath(), err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
	return cfg, true, nil
}

// SaveUserConfig writes ~/.esmcat/config.yaml.
func SaveUserConfig(cfg *UserConfig) error {
	if err := os.MkdirAll(ConfigDir(), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(ConfigPath(), data, 0o600)
}
