package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

const defaultConfigPath = "~/.config/photopost/config.json"

// Environment variables holding the platform credentials. A .env file in the
// working directory is honored before these are read.
const (
	EnvUsername = "PHOTOPOST_USERNAME"
	EnvPassword = "PHOTOPOST_PASSWORD"
)

// ErrMissingCredentials is returned when either credential variable is unset.
var ErrMissingCredentials = errors.New("missing credentials: set " + EnvUsername + " and " + EnvPassword + " (a .env file in the working directory works too)")

// Config holds user-editable settings for the uploader.
type Config struct {
	Paths   Paths   `json:"paths"`
	Upload  Upload  `json:"upload"`
	Logging Logging `json:"logging"`
}

// Paths configures the pending/archive directories and state files.
type Paths struct {
	PendingDir   string `json:"pending_dir"`   // Directory scanned for candidates
	ArchiveDir   string `json:"archive_dir"`   // Uploaded images move here
	SessionFile  string `json:"session_file"`  // Persisted login session artifact
	DatabasePath string `json:"database_path"` // Upload history database
}

// Upload configures the platform client.
type Upload struct {
	Endpoint  string `json:"endpoint"`   // Instance API base URL
	UserAgent string `json:"user_agent"` // Sent on every request
}

// Logging controls logging verbosity and destinations.
type Logging struct {
	Level      string `json:"level"`       // debug, info, warn, error
	FileOutput bool   `json:"file_output"` // Enable file logging
	LogDir     string `json:"log_dir"`     // Directory for log files
}

// Credentials holds the two required platform credentials.
type Credentials struct {
	Username string
	Password string
}

// Load reads configuration from disk, falling back to sensible defaults.
func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := os.Getenv("PHOTOPOST_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	expanded, err := expandUser(configPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(expanded)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// CredentialsFromEnv reads the required credentials from the environment.
// Absence of either is a configuration error the caller treats as fatal.
func CredentialsFromEnv() (Credentials, error) {
	creds := Credentials{
		Username: os.Getenv(EnvUsername),
		Password: os.Getenv(EnvPassword),
	}
	if creds.Username == "" || creds.Password == "" {
		return Credentials{}, ErrMissingCredentials
	}
	return creds, nil
}

func defaultConfig() *Config {
	return &Config{
		Paths: Paths{
			PendingDir:   "images",
			ArchiveDir:   "uploaded",
			SessionFile:  filepath.Join("config", "session.json"),
			DatabasePath: filepath.Join(os.TempDir(), "photopost.db"),
		},
		Upload: Upload{
			Endpoint:  "https://pixelfed.social",
			UserAgent: "photopost/1.0",
		},
		Logging: Logging{
			Level:      "info",
			FileOutput: true,
			LogDir:     "./logs",
		},
	}
}

func expandUser(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if path == "~" {
		return home, nil
	}

	return filepath.Join(home, path[2:]), nil
}
