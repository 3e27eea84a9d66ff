// Package config persists CLI profiles under ~/.nsentry.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	CurrentProfile string              `yaml:"current_profile"`
	Profiles       map[string]*Profile `yaml:"profiles"`
	path           string
}

// Profile is one saved server connection.
type Profile struct {
	ServerURL    string `yaml:"server_url"`
	APIKey       string `yaml:"api_key,omitempty"`
	SessionToken string `yaml:"session_token,omitempty"`
	IngestToken  string `yaml:"ingest_token,omitempty"`
}

func Default() *Config {
	return &Config{
		CurrentProfile: "default",
		Profiles:       make(map[string]*Profile),
	}
}

func defaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".nsentry", "config.yaml"), nil
}

func Load(cfgFile string) (*Config, error) {
	if cfgFile == "" {
		p, err := defaultPath()
		if err != nil {
			return nil, err
		}
		cfgFile = p
	}

	cfg := Default()
	cfg.path = cfgFile

	data, err := os.ReadFile(cfgFile)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Save() error {
	if c.path == "" {
		p, err := defaultPath()
		if err != nil {
			return err
		}
		c.path = p
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(c.path, data, 0600)
}

// SaveProfile stores a profile and makes it current.
func (c *Config) SaveProfile(name string, p *Profile) error {
	if c.Profiles == nil {
		c.Profiles = make(map[string]*Profile)
	}
	c.Profiles[name] = p
	c.CurrentProfile = name
	return c.Save()
}

func (c *Config) GetProfile(name string) (*Profile, error) {
	if name == "" {
		name = c.CurrentProfile
	}
	profile, ok := c.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("profile '%s' not found", name)
	}
	return profile, nil
}

func (c *Config) RemoveProfile(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("profile '%s' not found", name)
	}
	delete(c.Profiles, name)
	if c.CurrentProfile == name {
		c.CurrentProfile = ""
	}
	return c.Save()
}
