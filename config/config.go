// Package config loads the ttycodec configuration from ~/.ttycodec.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"ttycodec/log"

	"github.com/pelletier/go-toml/v2"
)

const (
	ConfigFileName = "config.json"
	TOMLFileName   = "config.toml"

	// dirEnv overrides the configuration directory.
	dirEnv = "TTYCODEC_CONFIG_DIR"

	defaultTerm           = "xterm-256color"
	defaultProbeTimeoutMS = 500
)

// Database source names for Config.Sources.
const (
	SourceBuiltin = "builtin"
	SourceInfocmp = "infocmp"
)

// UTF-8 modes for Config.UTF8.
const (
	UTF8Auto = "auto"
	UTF8On   = "on"
	UTF8Off  = "off"
)

// GetConfigDir returns the path to the configuration directory.
func GetConfigDir() (string, error) {
	if dir := os.Getenv(dirEnv); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config home directory: %w", err)
	}
	return filepath.Join(homeDir, ".ttycodec"), nil
}

// Config represents the application configuration.
type Config struct {
	// DefaultTerm is used when TERM is unset.
	DefaultTerm string `json:"default_term" toml:"default_term"`
	// Sources lists the terminal databases to consult, in order. Valid
	// values: "builtin", "infocmp".
	Sources []string `json:"sources" toml:"sources"`
	// TerminalFeatures entries are "pattern:feature:feature" and add
	// features to terminals whose name matches pattern.
	TerminalFeatures []string `json:"terminal_features" toml:"terminal_features"`
	// TerminalOverrides entries are "pattern:cap=value:cap@" and change
	// capabilities of matching terminals.
	TerminalOverrides []string `json:"terminal_overrides" toml:"terminal_overrides"`
	// ForceSpaces lists terminal patterns that get background colour erase
	// wrong; clearing on them always writes spaces.
	ForceSpaces []string `json:"force_spaces" toml:"force_spaces"`
	// Probe enables querying the terminal for its identity when a
	// connection opens.
	Probe bool `json:"probe" toml:"probe"`
	// ProbeTimeoutMS bounds how long the probe waits for replies.
	ProbeTimeoutMS int `json:"probe_timeout_ms" toml:"probe_timeout_ms"`
	// UTF8 is "auto", "on" or "off".
	UTF8 string `json:"utf8" toml:"utf8"`
	// Placeholder replaces glyphs the terminal cannot show.
	Placeholder string `json:"placeholder" toml:"placeholder"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultTerm: defaultTerm,
		Sources:     []string{SourceInfocmp, SourceBuiltin},
		TerminalFeatures: []string{
			"xterm*:clipboard:ccolour:cstyle:focus:title",
			"screen*:title",
			"rxvt*:ignorefkeys",
		},
		ForceSpaces:    []string{"linux*"},
		Probe:          true,
		ProbeTimeoutMS: defaultProbeTimeoutMS,
		UTF8:           UTF8Auto,
		Placeholder:    "_",
	}
}

// ProbeTimeout returns the probe timeout, falling back to the default for
// values that are not positive.
func (c *Config) ProbeTimeout() time.Duration {
	ms := c.ProbeTimeoutMS
	if ms <= 0 {
		ms = defaultProbeTimeoutMS
	}
	return time.Duration(ms) * time.Millisecond
}

// Term returns term, or the default terminal when term is empty.
func (c *Config) Term(term string) string {
	if term != "" {
		return term
	}
	if c.DefaultTerm != "" {
		return c.DefaultTerm
	}
	return defaultTerm
}

// FeaturesFor returns the feature lists of every TerminalFeatures entry
// whose pattern matches term.
func (c *Config) FeaturesFor(term string) []string {
	var out []string
	for _, entry := range c.TerminalFeatures {
		pattern, features, ok := strings.Cut(entry, ":")
		if !ok || !matches(pattern, term) {
			continue
		}
		out = append(out, features)
	}
	return out
}

// ForceSpacesFor reports whether term is in the ForceSpaces list.
func (c *Config) ForceSpacesFor(term string) bool {
	for _, pattern := range c.ForceSpaces {
		if matches(pattern, term) {
			return true
		}
	}
	return false
}

// PlaceholderByte returns the placeholder glyph, which must be printable
// ASCII. Anything else gives 0 so the default is used.
func (c *Config) PlaceholderByte() byte {
	if len(c.Placeholder) != 1 || c.Placeholder[0] < 0x20 || c.Placeholder[0] > 0x7e {
		return 0
	}
	return c.Placeholder[0]
}

// UTF8Mode returns the UTF8 setting, treating unknown values as "auto".
func (c *Config) UTF8Mode() string {
	switch strings.ToLower(c.UTF8) {
	case UTF8On, "true", "yes":
		return UTF8On
	case UTF8Off, "false", "no":
		return UTF8Off
	}
	return UTF8Auto
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	for _, s := range c.Sources {
		if s != SourceBuiltin && s != SourceInfocmp {
			return fmt.Errorf("unknown terminal database source %q", s)
		}
	}
	for _, list := range [][]string{c.TerminalFeatures, c.TerminalOverrides, c.ForceSpaces} {
		for _, entry := range list {
			pattern, _, _ := strings.Cut(entry, ":")
			if _, err := path.Match(pattern, ""); err != nil {
				return fmt.Errorf("invalid terminal pattern %q: %w", pattern, err)
			}
		}
	}
	return nil
}

func matches(pattern, term string) bool {
	ok, err := path.Match(pattern, term)
	return err == nil && ok
}

// LoadConfig reads config.toml if it exists, else config.json. A missing
// configuration is created with the defaults; any other failure logs and
// returns the defaults.
func LoadConfig() *Config {
	configDir, err := GetConfigDir()
	if err != nil {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
		return DefaultConfig()
	}

	tomlPath := filepath.Join(configDir, TOMLFileName)
	if data, err := os.ReadFile(tomlPath); err == nil {
		return parseConfig(tomlPath, data, toml.Unmarshal)
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			defaultCfg := DefaultConfig()
			if saveErr := saveConfig(defaultCfg); saveErr != nil {
				log.WarningLog.Printf("failed to save default config: %v", saveErr)
			}
			return defaultCfg
		}

		log.WarningLog.Printf("failed to get config file: %v", err)
		return DefaultConfig()
	}
	return parseConfig(configPath, data, json.Unmarshal)
}

func parseConfig(configPath string, data []byte, unmarshal func([]byte, any) error) *Config {
	// Fields missing from the file keep their defaults.
	config := DefaultConfig()
	err := unmarshal(data, config)
	if err == nil {
		err = config.Validate()
	}
	if err != nil {
		preview := string(data)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		log.ErrorLog.Printf("failed to parse config file at %s: %v\nConfig content preview: %s", configPath, err, preview)

		backupPath := configPath + ".corrupt." + time.Now().Format("20060102-150405")
		if backupErr := os.WriteFile(backupPath, data, 0644); backupErr == nil {
			log.InfoLog.Printf("Backed up corrupted config to: %s", backupPath)
		}
		return DefaultConfig()
	}
	return config
}

// saveConfig writes the configuration as JSON under the config lock.
func saveConfig(config *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	lock := NewFileLock(configPath)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire write lock: %w", err)
	}
	defer lock.Unlock()

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// SaveConfig writes config to config.json.
func SaveConfig(config *Config) error {
	return saveConfig(config)
}

// MarshalTOML renders config in the config.toml format.
func MarshalTOML(config *Config) ([]byte, error) {
	data, err := toml.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
