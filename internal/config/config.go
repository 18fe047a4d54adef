package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	APIURL              string   `json:"api_url"`
	DBPath              string   `json:"db_path"`
	LogPath             string   `json:"log_path"`
	LogLevel            string   `json:"log_level"`
	OTLPEndpoint        string   `json:"otlp_endpoint"`
	RequestTimeout      Duration `json:"request_timeout"`
	ToastDuration       Duration `json:"toast_duration"`
	DragRevealDelay     Duration `json:"drag_reveal_delay"`
	SessionPollInterval Duration `json:"session_poll_interval"`
}

// Duration is a time.Duration stored as a string such as "3s".
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		var ms int64
		if numErr := json.Unmarshal(data, &ms); numErr != nil {
			return err
		}
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func Default() Config {
	return Config{
		APIURL:              "http://localhost:8080",
		LogLevel:            "info",
		RequestTimeout:      Duration(15 * time.Second),
		ToastDuration:       Duration(3 * time.Second),
		DragRevealDelay:     Duration(200 * time.Millisecond),
		SessionPollInterval: Duration(2 * time.Second),
	}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "lazytareas", "config.json"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return Config{}, err
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	config.fillDefaults()
	return config, nil
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// ResolvePaths fills the storage and log paths next to the config file when
// they are not set.
func (c *Config) ResolvePaths(cfgPath string) {
	dir := filepath.Dir(cfgPath)
	if c.DBPath == "" {
		c.DBPath = filepath.Join(dir, "lazytareas.db")
	}
	if c.LogPath == "" {
		c.LogPath = filepath.Join(dir, "lazytareas.log")
	}
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.APIURL == "" {
		c.APIURL = def.APIURL
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = def.RequestTimeout
	}
	if c.ToastDuration <= 0 {
		c.ToastDuration = def.ToastDuration
	}
	if c.DragRevealDelay <= 0 {
		c.DragRevealDelay = def.DragRevealDelay
	}
	if c.SessionPollInterval <= 0 {
		c.SessionPollInterval = def.SessionPollInterval
	}
}
