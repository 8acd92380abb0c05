package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	defaultPictureSaveDirectory = "./pictures"
	defaultStoreBackend         = "sqlite"
	defaultDataDir              = "./data"
	defaultPort                 = 8080
	defaultLogLevel             = "info"
)

// Config holds the service settings. Values come from an optional YAML file
// named by PICTURE_CONFIG_FILE, then environment variables, which take precedence.
type Config struct {
	PictureSaveDirectory string `yaml:"picture_save_directory"`
	StoreBackend         string `yaml:"store_backend"`
	DataDir              string `yaml:"data_dir"`
	SQLitePath           string `yaml:"sqlite_db_path"`
	Port                 int    `yaml:"port"`
	LogLevel             string `yaml:"log_level"`
}

func defaults() *Config {
	return &Config{
		PictureSaveDirectory: defaultPictureSaveDirectory,
		StoreBackend:         defaultStoreBackend,
		DataDir:              defaultDataDir,
		Port:                 defaultPort,
		LogLevel:             defaultLogLevel,
	}
}

// Load builds the configuration from PICTURE_CONFIG_FILE and the environment
func Load() (*Config, error) {
	return LoadFile(os.Getenv("PICTURE_CONFIG_FILE"))
}

// LoadFile builds the configuration from the given YAML file, if any, and the environment
func LoadFile(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString("PICTURE_SAVE_DIRECTORY", &c.PictureSaveDirectory)
	setString("STORE_BACKEND", &c.StoreBackend)
	setString("DATA_DIR", &c.DataDir)
	setString("SQLITE_DB_PATH", &c.SQLitePath)
	setString("LOG_LEVEL", &c.LogLevel)

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Port = port
	}

	return nil
}

func (c *Config) validate() error {
	if c.PictureSaveDirectory == "" {
		return fmt.Errorf("picture save directory cannot be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

// Level returns the configured zerolog level
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
