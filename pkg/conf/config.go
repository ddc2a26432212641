// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

package conf

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Analytics server configuration
type Config struct {
	LogLevel      string `yaml:"log_level" envconfig:"log_level"` // "debug", "info", "warn", "error"
	PublicBaseUrl string `yaml:"public_base_url" split_words:"true"`
	Port          int    `yaml:"port"`
	Dsn           string `yaml:"dsn"`
	Access        `yaml:"access"`
	JWT           `yaml:"jwt"`
	Cors          `yaml:"cors"`
	Ingest        `yaml:"ingest"`
	Dashboard     `yaml:"dashboard"`
}

// Access protects the read api with basic authentication.
type Access struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// JWT configures the dashboard login.
type JWT struct {
	SecretKey string            `yaml:"secret_key" split_words:"true"`
	Admin     map[string]string `yaml:"admin"`
}

type Cors struct {
	AllowedOrigins []string `yaml:"allowed_origins" split_words:"true"`
}

type Ingest struct {
	Path         string `yaml:"path"`           // route of the tracking endpoint
	MaxBodyBytes int64  `yaml:"max_body_bytes" split_words:"true"`
}

type Dashboard struct {
	WindowDays int `yaml:"window_days" split_words:"true"`
}

const (
	DefaultPort         = 8081
	DefaultDsn          = "sqlite3://file:cnanalytics.sqlite"
	DefaultIngestPath   = "/track-analytics"
	DefaultMaxBodyBytes = 64 * 1024
	DefaultWindowDays   = 30
	EnvPrefix           = "cnserver"
)

// Init initializes the configuration from an optional yaml file,
// then from environment variables prefixed with CNSERVER_.
// A .env file present in the working directory is loaded first.
func Init(configFile string) (*Config, error) {

	var c Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if configFile != "" {
		f, _ := filepath.Abs(configFile)
		yamlData, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		err = yaml.Unmarshal(yamlData, &c)
		if err != nil {
			return nil, err
		}
	}

	// CNSERVER_PORT, CNSERVER_DSN, CNSERVER_LOG_LEVEL ...
	if err := envconfig.Process(EnvPrefix, &c); err != nil {
		return nil, err
	}

	c.setDefaults()
	return &c, nil
}

func (c *Config) setDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Dsn == "" {
		c.Dsn = DefaultDsn
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Ingest.Path == "" {
		c.Ingest.Path = DefaultIngestPath
	}
	if c.Ingest.MaxBodyBytes == 0 {
		c.Ingest.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Dashboard.WindowDays == 0 {
		c.Dashboard.WindowDays = DefaultWindowDays
	}
}
