// Package config provides configuration management for the rscodec CLI tool
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Davincible/rscodec/pkg/trial"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrVerbosity       = errors.New("unknown verbosity")
)

// Verbosity levels accepted in UIConfig.Verbosity
const (
	VerbosityQuiet   = "quiet"
	VerbosityNormal  = "normal"
	VerbosityVerbose = "verbose"
)

// Config represents the main configuration structure
type Config struct {
	Version  string        `json:"version"`
	Defaults CodecSettings `json:"defaults"`
	Trial    TrialSettings `json:"trial"`
	UI       UIConfig      `json:"ui"`
}

// CodecSettings describes one field and code configuration
type CodecSettings struct {
	GeneratorPoly int `json:"generator_poly"` // Default: 19 (x^4+x+1)
	FirstRoot     int `json:"first_root"`     // Default: 0
	BlockSize     int `json:"block_size"`     // Default: 15
	MessageSize   int `json:"message_size"`   // Default: 11
}

// TrialSettings contains defaults for the trial command
type TrialSettings struct {
	Runs    int    `json:"runs"`    // Default: 1000
	Seed    uint64 `json:"seed"`    // Default: 1
	Workers int    `json:"workers"` // Default: 1
}

// UIConfig contains user interface settings
type UIConfig struct {
	UseColor  bool   `json:"use_color"` // Enable colored output
	Progress  bool   `json:"progress"`  // Show the live trial counter
	Verbosity string `json:"verbosity"` // quiet, normal, verbose
}

// Profile is a named codec configuration saved for quick access
type Profile struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Codec       CodecSettings `json:"codec"`
	Tags        []string      `json:"tags"`
}

// ConfigManager manages configuration loading and saving
type ConfigManager struct {
	config     *Config
	configPath string
	profiles   map[string]*Profile
}

// NewConfigManager creates a new configuration manager
func NewConfigManager() (*ConfigManager, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return NewConfigManagerAt(configPath)
}

// NewConfigManagerAt creates a configuration manager backed by configPath,
// writing the default configuration there if none exists.
func NewConfigManagerAt(configPath string) (*ConfigManager, error) {
	cm := &ConfigManager{
		configPath: configPath,
		profiles:   make(map[string]*Profile),
	}

	if err := cm.LoadConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cm.config = DefaultConfig()
		if err := cm.SaveConfig(); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	}

	if err := cm.LoadProfiles(); err != nil {
		// Profiles are optional, so we don't fail here
		cm.profiles = make(map[string]*Profile)
	}

	return cm, nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0.0",
		Defaults: CodecSettings{
			GeneratorPoly: 19,
			FirstRoot:     0,
			BlockSize:     15,
			MessageSize:   11,
		},
		Trial: TrialSettings{
			Runs:    1000,
			Seed:    1,
			Workers: 1,
		},
		UI: UIConfig{
			UseColor:  true,
			Progress:  true,
			Verbosity: VerbosityNormal,
		},
	}
}

// Path returns the configuration file location
func (cm *ConfigManager) Path() string {
	return cm.configPath
}

// LoadConfig loads the configuration from disk
func (cm *ConfigManager) LoadConfig() error {
	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return err
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	cm.config = config
	return nil
}

// SaveConfig saves the configuration to disk
func (cm *ConfigManager) SaveConfig() error {
	configDir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cm.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cm.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfig returns the current configuration
func (cm *ConfigManager) GetConfig() *Config {
	return cm.config
}

// SetConfig updates the configuration
func (cm *ConfigManager) SetConfig(config *Config) {
	cm.config = config
}

func (cm *ConfigManager) profilesPath() string {
	return filepath.Join(filepath.Dir(cm.configPath), "profiles.json")
}

// LoadProfiles loads saved codec profiles
func (cm *ConfigManager) LoadProfiles() error {
	data, err := os.ReadFile(cm.profilesPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	profiles := make(map[string]*Profile)
	if err := json.Unmarshal(data, &profiles); err != nil {
		return fmt.Errorf("failed to parse profiles: %w", err)
	}

	cm.profiles = profiles
	return nil
}

// SaveProfiles saves codec profiles to disk
func (cm *ConfigManager) SaveProfiles() error {
	data, err := json.MarshalIndent(cm.profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}

	if err := os.WriteFile(cm.profilesPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}

	return nil
}

// AddProfile adds or replaces a codec profile
func (cm *ConfigManager) AddProfile(profile *Profile) error {
	if profile.Name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	if err := ValidateCodec(profile.Codec); err != nil {
		return fmt.Errorf("profile '%s': %w", profile.Name, err)
	}

	cm.profiles[profile.Name] = profile
	return cm.SaveProfiles()
}

// GetProfile retrieves a codec profile by name
func (cm *ConfigManager) GetProfile(name string) (*Profile, error) {
	profile, exists := cm.profiles[name]
	if !exists {
		return nil, fmt.Errorf("%w: '%s'", ErrProfileNotFound, name)
	}
	return profile, nil
}

// ListProfiles returns all available profiles sorted by name
func (cm *ConfigManager) ListProfiles() []*Profile {
	profiles := make([]*Profile, 0, len(cm.profiles))
	for _, profile := range cm.profiles {
		profiles = append(profiles, profile)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})
	return profiles
}

// DeleteProfile removes a codec profile
func (cm *ConfigManager) DeleteProfile(name string) error {
	if _, exists := cm.profiles[name]; !exists {
		return fmt.Errorf("%w: '%s'", ErrProfileNotFound, name)
	}

	delete(cm.profiles, name)
	return cm.SaveProfiles()
}

// getConfigPath returns the configuration file path
func getConfigPath() (string, error) {
	if customPath := os.Getenv("RSCODEC_CONFIG"); customPath != "" {
		return customPath, nil
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "rscodec", "config.json"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "rscodec", "config.json"), nil
}

// ApplyDefaults fills zero values of settings from the configured defaults.
// A zero FirstRoot is a legal value, so it is never replaced.
func (cm *ConfigManager) ApplyDefaults(settings *CodecSettings) {
	d := cm.config.Defaults
	if settings.GeneratorPoly == 0 {
		settings.GeneratorPoly = d.GeneratorPoly
	}
	if settings.BlockSize == 0 {
		settings.BlockSize = d.BlockSize
	}
	if settings.MessageSize == 0 {
		settings.MessageSize = d.MessageSize
	}
}

// TrialConfig combines codec settings with the trial defaults
func (cm *ConfigManager) TrialConfig(settings CodecSettings) trial.Config {
	return trial.Config{
		GeneratorPoly: settings.GeneratorPoly,
		MessageSize:   settings.MessageSize,
		BlockSize:     settings.BlockSize,
		FirstRoot:     settings.FirstRoot,
		Runs:          cm.config.Trial.Runs,
		Seed:          cm.config.Trial.Seed,
		Workers:       cm.config.Trial.Workers,
	}
}

// ValidateCodec checks codec settings without building any tables
func ValidateCodec(s CodecSettings) error {
	if s.GeneratorPoly < 3 || s.GeneratorPoly%2 == 0 {
		return fmt.Errorf("generator polynomial must be odd and at least 3 (got %d)", s.GeneratorPoly)
	}
	if s.MessageSize < 1 {
		return fmt.Errorf("message size must be positive (got %d)", s.MessageSize)
	}
	if s.BlockSize <= s.MessageSize {
		return fmt.Errorf("message size %d must be less than block size %d", s.MessageSize, s.BlockSize)
	}
	return nil
}

// ValidateVerbosity accepts quiet, normal and verbose. An empty value means normal.
func ValidateVerbosity(v string) error {
	switch v {
	case "", VerbosityQuiet, VerbosityNormal, VerbosityVerbose:
		return nil
	}
	return fmt.Errorf("%w: '%s' (want quiet, normal or verbose)", ErrVerbosity, v)
}
