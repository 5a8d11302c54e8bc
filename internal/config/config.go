package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/pders01/notes-seed/internal/seeder"
)

const (
	DefaultHost    = "127.0.0.1"
	DefaultPort    = 8765
	DefaultSeedURL = seeder.DefaultSeedURL
	DefaultTimeout = seeder.DefaultTimeout

	// EnvPrefix namespaces environment overrides, e.g. NOTES_SEED_SEED_URL
	EnvPrefix = "NOTES_SEED"
)

// SetDefaults registers every key with its default value
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.seed_file", "")
	v.SetDefault("seed.url", DefaultSeedURL)
	v.SetDefault("seed.timeout", DefaultTimeout.String())
	v.SetDefault("log.level", "info")
}

// ConfigureEnv enables NOTES_SEED_* environment overrides
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// DefaultConfigPath returns $HOME/.config/notes-seed/config.toml
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "notes-seed", "config.toml"), nil
}

// GetHost returns the seed server bind host
func GetHost() string {
	if h := viper.GetString("server.host"); h != "" {
		return h
	}
	return DefaultHost
}

// GetPort returns the seed server bind port
func GetPort() int {
	if p := viper.GetInt("server.port"); p != 0 {
		return p
	}
	return DefaultPort
}

// GetSeedFile returns the optional external seed file
func GetSeedFile() string {
	return viper.GetString("server.seed_file")
}

// GetSeedURL returns the endpoint the seed command fetches from
func GetSeedURL() string {
	if u := viper.GetString("seed.url"); u != "" {
		return u
	}
	return DefaultSeedURL
}

// GetTimeout returns the fetch timeout
func GetTimeout() time.Duration {
	if d := viper.GetDuration("seed.timeout"); d > 0 {
		return d
	}
	return DefaultTimeout
}

// GetLogLevel parses log.level, falling back to info
func GetLogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log.level"))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// File mirrors config.toml
type File struct {
	Server ServerSection `toml:"server"`
	Seed   SeedSection   `toml:"seed"`
	Log    LogSection    `toml:"log"`
}

type ServerSection struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	SeedFile string `toml:"seed_file"`
}

type SeedSection struct {
	URL     string `toml:"url"`
	Timeout string `toml:"timeout"`
}

type LogSection struct {
	Level string `toml:"level"`
}

// DefaultFile returns the config written by `notes-seed init`
func DefaultFile() File {
	return File{
		Server: ServerSection{Host: DefaultHost, Port: DefaultPort},
		Seed:   SeedSection{URL: DefaultSeedURL, Timeout: DefaultTimeout.String()},
		Log:    LogSection{Level: "info"},
	}
}

// WriteDefault writes the default config to path. It returns false without
// touching anything if the file already exists.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return false, fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(DefaultFile()); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}
