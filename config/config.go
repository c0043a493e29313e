/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	storeerrors "github.com/suparena/arraywriter/errors"
)

// WriteMode selects how the handler waits for row writes.
type WriteMode string

const (
	// WriteModeAsync dispatches writes and responds without waiting for them.
	WriteModeAsync WriteMode = "async"
	// WriteModeSync responds only after every write has completed.
	WriteModeSync WriteMode = "sync"
)

// Config is the process configuration.
type Config struct {
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`
	// Route is the path the write endpoint is mounted on.
	Route string `yaml:"route" json:"route"`

	TableName        string `yaml:"table_name" json:"table_name"`
	AWSRegion        string `yaml:"aws_region" json:"aws_region"`
	AWSAccessKey     string `yaml:"aws_access_key" json:"-"`
	AWSSecretKey     string `yaml:"aws_secret_key" json:"-"`
	DynamoDBEndpoint string `yaml:"dynamodb_endpoint" json:"dynamodb_endpoint"`

	// DiscloseResponseBody adds {key, count} to successful write responses.
	DiscloseResponseBody bool          `yaml:"disclose_response_body" json:"disclose_response_body"`
	WriteMode            WriteMode     `yaml:"write_mode" json:"write_mode"`
	WriteTimeout         time.Duration `yaml:"write_timeout" json:"write_timeout"`
	MaxWriteRetries      int           `yaml:"max_write_retries" json:"max_write_retries"`
	MaxBodyBytes         int64         `yaml:"max_body_bytes" json:"max_body_bytes"`

	// ReadPageSize is the number of rows fetched per Query page on reads.
	ReadPageSize int32 `yaml:"read_page_size" json:"read_page_size"`

	// FunctionKey, when set, must accompany every API request.
	FunctionKey string `yaml:"function_key" json:"-"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		ListenAddr:           ":8080",
		Route:                "/api/SortArrayWriter",
		TableName:            "SortArray",
		AWSRegion:            "us-east-1",
		DiscloseResponseBody: true,
		WriteMode:            WriteModeAsync,
		WriteTimeout:         10 * time.Second,
		MaxWriteRetries:      2,
		MaxBodyBytes:         1 << 20,
		ReadPageSize:         100,
	}
}

// Load builds the configuration from defaults, a .env file in the working
// directory, the YAML file at path and finally the environment.
// An empty path means CONFIG_PATH or ./config.yaml, and a missing file is
// then tolerated; an explicit path must exist.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	required := path != ""
	if !required {
		path = getenv("CONFIG_PATH", "./config.yaml")
	}

	c := Default()
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !required:
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("ROUTE"); v != "" {
		c.Route = v
	}
	if v := os.Getenv("TABLE_NAME"); v != "" {
		c.TableName = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		c.AWSRegion = v
	}
	if v := os.Getenv("AWS_ACCESS_KEY"); v != "" {
		c.AWSAccessKey = v
	}
	if v := os.Getenv("AWS_SECRET_KEY"); v != "" {
		c.AWSSecretKey = v
	}
	if v := os.Getenv("DYNAMODB_ENDPOINT"); v != "" {
		c.DynamoDBEndpoint = v
	}
	if v := os.Getenv("WRITE_MODE"); v != "" {
		c.WriteMode = WriteMode(strings.ToLower(strings.TrimSpace(v)))
	}
	if v := os.Getenv("FUNCTION_KEY"); v != "" {
		c.FunctionKey = v
	}

	if v := os.Getenv("DISCLOSE_RESPONSE_BODY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return storeerrors.NewValidationError("DISCLOSE_RESPONSE_BODY", err.Error())
		}
		c.DiscloseResponseBody = b
	}
	if v := os.Getenv("WRITE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return storeerrors.NewValidationError("WRITE_TIMEOUT", err.Error())
		}
		c.WriteTimeout = d
	}
	if v := os.Getenv("MAX_WRITE_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return storeerrors.NewValidationError("MAX_WRITE_RETRIES", err.Error())
		}
		c.MaxWriteRetries = n
	}
	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return storeerrors.NewValidationError("MAX_BODY_BYTES", err.Error())
		}
		c.MaxBodyBytes = n
	}
	if v := os.Getenv("READ_PAGE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return storeerrors.NewValidationError("READ_PAGE_SIZE", err.Error())
		}
		c.ReadPageSize = int32(n)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case !strings.HasPrefix(c.Route, "/"):
		return storeerrors.NewValidationError("route", "must start with /")
	case c.TableName == "":
		return storeerrors.NewValidationError("table_name", "must not be empty")
	case c.WriteMode != WriteModeAsync && c.WriteMode != WriteModeSync:
		return storeerrors.NewValidationError("write_mode", fmt.Sprintf("must be %q or %q, got %q", WriteModeAsync, WriteModeSync, c.WriteMode))
	case c.WriteTimeout <= 0:
		return storeerrors.NewValidationError("write_timeout", "must be positive")
	case c.MaxWriteRetries < 0:
		return storeerrors.NewValidationError("max_write_retries", "must not be negative")
	case c.MaxBodyBytes <= 0:
		return storeerrors.NewValidationError("max_body_bytes", "must be positive")
	case c.ReadPageSize <= 0:
		return storeerrors.NewValidationError("read_page_size", "must be positive")
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}

	return def
}
