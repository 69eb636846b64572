package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Settings backends
const (
	BackendSQLite      = "sqlite"
	BackendPreferences = "preferences"
)

// Config represents the application configuration
type Config struct {
	Settings SettingsConfig `json:"settings" mapstructure:"settings"`
	UI       UIConfig       `json:"ui" mapstructure:"ui"`
	Log      LogConfig      `json:"log" mapstructure:"log"`
}

// SettingsConfig selects where user preferences are persisted
type SettingsConfig struct {
	Organization string `json:"organization" mapstructure:"organization"`
	Backend      string `json:"backend" mapstructure:"backend"`
	Path         string `json:"path,omitempty" mapstructure:"path"` // sqlite file, defaults under the user config dir
}

// UIConfig represents UI configuration
type UIConfig struct {
	Theme          string `json:"theme" mapstructure:"theme"`
	FontSize       int    `json:"font_size" mapstructure:"font_size"`
	MaxRecentFiles int    `json:"max_recent_files" mapstructure:"max_recent_files"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level string `json:"level" mapstructure:"level"`
	Path  string `json:"path,omitempty" mapstructure:"path"`
}

// DefaultConfig returns the configuration written on first start
func DefaultConfig() *Config {
	return &Config{
		Settings: SettingsConfig{
			Organization: "dbbrowser",
			Backend:      BackendSQLite,
		},
		UI: UIConfig{
			Theme:          "light",
			FontSize:       14,
			MaxRecentFiles: 5,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("settings.organization", d.Settings.Organization)
	v.SetDefault("settings.backend", d.Settings.Backend)
	v.SetDefault("settings.path", d.Settings.Path)
	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("ui.font_size", d.UI.FontSize)
	v.SetDefault("ui.max_recent_files", d.UI.MaxRecentFiles)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.path", d.Log.Path)
}

// LoadConfig loads configuration from file. Values can be overridden with
// DBBROWSER_* environment variables, e.g. DBBROWSER_SETTINGS_BACKEND.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	v.SetEnvPrefix("DBBROWSER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Expand paths
	config.Settings.Path = expandPath(config.Settings.Path)
	config.Log.Path = expandPath(config.Log.Path)

	return &config, nil
}

// Validate checks values that would otherwise fail later at startup
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Settings.Organization) == "" {
		return fmt.Errorf("invalid config: settings.organization is empty")
	}
	switch c.Settings.Backend {
	case BackendSQLite, BackendPreferences:
	default:
		return fmt.Errorf("invalid config: unknown settings backend %q", c.Settings.Backend)
	}
	if c.UI.MaxRecentFiles < 0 {
		return fmt.Errorf("invalid config: ui.max_recent_files must not be negative")
	}
	return nil
}

// SettingsPath returns the sqlite file holding the user's preferences.
// Like other desktop settings stores it lives under <config dir>/<org>/<org>.db.
func (c *Config) SettingsPath() string {
	if c.Settings.Path != "" {
		return c.Settings.Path
	}
	org := c.Settings.Organization
	configDir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "config", org+".db")
	}
	return filepath.Join(configDir, org, org+".db")
}

// SaveConfig saves configuration to file
func SaveConfig(configPath string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// expandPath expands ~ and relative paths
func expandPath(path string) string {
	if len(path) == 0 {
		return path
	}

	if expanded, err := homedir.Expand(path); err == nil {
		path = expanded
	}

	absPath, err := filepath.Abs(path)
	if err == nil {
		return absPath
	}

	return path
}

// GetConfigPath returns the default config path
func GetConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to current directory
		return "./config/config.json"
	}

	return filepath.Join(configDir, "dbbrowser", "config.json")
}

// EnsureDefaultConfig creates a default config file if it doesn't exist
func EnsureDefaultConfig() (string, error) {
	return ensureConfigAt(GetConfigPath())
}

func ensureConfigAt(configPath string) (string, error) {
	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	}

	if err := SaveConfig(configPath, DefaultConfig()); err != nil {
		return "", err
	}

	return configPath, nil
}
