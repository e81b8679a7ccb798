// Copyright 2019 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the server configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverFile = "file"
	DriverGCS  = "gcs"
	DriverS3   = "s3"
)

// Config holds the server configuration.
type Config struct {
	Port int `yaml:"port"`

	Storage Storage `yaml:"storage"`

	// MaxObjectBytes bounds the size of a single data file; zero or a
	// negative value disables the limit.
	MaxObjectBytes int64         `yaml:"max_object_bytes"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Secure serves HTTPS only and forwards client bearer tokens to GCS.
	Secure    bool   `yaml:"secure"`
	HTTPSCert string `yaml:"https_cert"`
	HTTPSKey  string `yaml:"https_key"`

	// TrackUsage enables query metrics on /metrics.
	TrackUsage bool `yaml:"track_usage"`
}

// Storage selects where data files are read from.
type Storage struct {
	Driver string `yaml:"driver"`

	// Directory is the data root of the file driver.
	Directory string `yaml:"directory"`
	// Bucket is the bucket of the gcs and s3 drivers.
	Bucket string `yaml:"bucket"`

	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`

	ExpressionPrefix string `yaml:"expression_prefix"`
	NetworkPrefix    string `yaml:"network_prefix"`
	MappingPrefix    string `yaml:"mapping_prefix"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Port:           8080,
		MaxObjectBytes: 1024 * 1024 * 1024,
		RequestTimeout: time.Minute,
		Storage: Storage{
			Driver:           DriverFile,
			Directory:        "data",
			ExpressionPrefix: "expression/",
			NetworkPrefix:    "network/",
			MappingPrefix:    "mapping/",
		},
	}
}

// Load reads the YAML file at path on top of the defaults and applies
// environment overrides.  An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("opening config: %v", err)
		}
		defer f.Close()
		if err := decode(f, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %v", path, err)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnv overrides cfg with GENOTET_* variables.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"GENOTET_STORAGE_DRIVER":    &cfg.Storage.Driver,
		"GENOTET_DATA_DIRECTORY":    &cfg.Storage.Directory,
		"GENOTET_BUCKET":            &cfg.Storage.Bucket,
		"GENOTET_S3_REGION":         &cfg.Storage.Region,
		"GENOTET_S3_ENDPOINT":       &cfg.Storage.Endpoint,
		"GENOTET_HTTPS_CERT":        &cfg.HTTPSCert,
		"GENOTET_HTTPS_KEY":         &cfg.HTTPSKey,
		"GENOTET_EXPRESSION_PREFIX": &cfg.Storage.ExpressionPrefix,
		"GENOTET_NETWORK_PREFIX":    &cfg.Storage.NetworkPrefix,
		"GENOTET_MAPPING_PREFIX":    &cfg.Storage.MappingPrefix,
	}
	for key, field := range strs {
		if v, ok := lookup(key); ok {
			*field = v
		}
	}
	if v, ok := lookup("GENOTET_PORT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing GENOTET_PORT: %v", err)
		}
		cfg.Port = n
	}
	if v, ok := lookup("GENOTET_MAX_OBJECT_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing GENOTET_MAX_OBJECT_BYTES: %v", err)
		}
		cfg.MaxObjectBytes = n
	}
	if v, ok := lookup("GENOTET_REQUEST_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing GENOTET_REQUEST_TIMEOUT: %v", err)
		}
		cfg.RequestTimeout = d
	}
	bools := map[string]*bool{
		"GENOTET_SECURE":        &cfg.Secure,
		"GENOTET_TRACK_USAGE":   &cfg.TrackUsage,
		"GENOTET_S3_PATH_STYLE": &cfg.Storage.PathStyle,
	}
	for key, field := range bools {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("parsing %s: %v", key, err)
			}
			*field = b
		}
	}
	return nil
}

// Validate reports the first inconsistency in cfg.
func (cfg *Config) Validate() error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.RequestTimeout < 0 {
		return fmt.Errorf("invalid request timeout %v", cfg.RequestTimeout)
	}
	if cfg.Secure && (cfg.HTTPSCert == "" || cfg.HTTPSKey == "") {
		return errors.New("secure mode requires both https_cert and https_key")
	}
	switch cfg.Storage.Driver {
	case DriverFile:
		if cfg.Storage.Directory == "" {
			return errors.New("the file driver requires a directory")
		}
	case DriverGCS, DriverS3:
		if cfg.Storage.Bucket == "" {
			return fmt.Errorf("the %s driver requires a bucket", cfg.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	for _, prefix := range []string{cfg.Storage.ExpressionPrefix, cfg.Storage.NetworkPrefix, cfg.Storage.MappingPrefix} {
		if strings.HasPrefix(prefix, "/") || strings.Contains(prefix, "..") {
			return fmt.Errorf("invalid object prefix %q", prefix)
		}
	}
	return nil
}
