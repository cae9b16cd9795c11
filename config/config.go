// Copyright 2025 CoreHive
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads service configuration from the environment,
// with an optional .env file for local development. Every variable is
// prefixed FACEID_.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage backend selectors.
const (
	BackendFS     = "fs"
	BackendBadger = "badger"
	BackendS3     = "s3"
)

// Defaults.
const (
	DefaultDataDir        = "./data"
	DefaultExtractorURL   = "http://localhost:5005"
	DefaultModel          = "Facenet"
	DefaultEmbeddingDim   = 128
	DefaultDetector       = "opencv"
	DefaultThreshold      = 0.65
	DefaultExtractTimeout = 10 * time.Second
)

// Config holds the full service configuration.
type Config struct {
	// StorageBackend selects the persistence layer: fs, badger or s3.
	StorageBackend string
	// DataDir is the root directory for the fs and badger backends.
	DataDir string

	// S3 settings, used only when StorageBackend is s3.
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool

	// ExtractorURL is the base URL of the embedding extraction service.
	ExtractorURL string
	// Model names the embedding model; Dimension must match its output.
	Model        string
	EmbeddingDim int
	// Detector names the face detection backend passed to the extractor.
	Detector string

	// Threshold is the minimum cosine similarity for a match.
	Threshold float64
	// ExtractTimeout bounds every extraction call.
	ExtractTimeout time.Duration
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables win over file values.
func Load() (*Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	cfg := &Config{
		StorageBackend: envString("FACEID_STORAGE_BACKEND", BackendFS),
		DataDir:        envString("FACEID_DATA_DIR", DefaultDataDir),
		S3Endpoint:     envString("FACEID_S3_ENDPOINT", ""),
		S3AccessKey:    envString("FACEID_S3_ACCESS_KEY", ""),
		S3SecretKey:    envString("FACEID_S3_SECRET_KEY", ""),
		S3Bucket:       envString("FACEID_S3_BUCKET", "faceid"),
		ExtractorURL:   envString("FACEID_EXTRACTOR_URL", DefaultExtractorURL),
		Model:          envString("FACEID_MODEL", DefaultModel),
		Detector:       envString("FACEID_DETECTOR", DefaultDetector),
	}

	var err error
	if cfg.S3UseSSL, err = envBool("FACEID_S3_USE_SSL", false); err != nil {
		return nil, err
	}
	if cfg.EmbeddingDim, err = envInt("FACEID_EMBEDDING_DIM", DefaultEmbeddingDim); err != nil {
		return nil, err
	}
	if cfg.Threshold, err = envFloat("FACEID_THRESHOLD", DefaultThreshold); err != nil {
		return nil, err
	}
	if cfg.ExtractTimeout, err = envDuration("FACEID_EXTRACT_TIMEOUT", DefaultExtractTimeout); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendFS, BackendBadger:
		if c.DataDir == "" {
			return fmt.Errorf("config: FACEID_DATA_DIR is required for the %s backend", c.StorageBackend)
		}
	case BackendS3:
		if c.S3Endpoint == "" {
			return fmt.Errorf("config: FACEID_S3_ENDPOINT is required for the s3 backend")
		}
	default:
		return fmt.Errorf("config: unknown storage backend %q (want fs, badger or s3)", c.StorageBackend)
	}

	if c.ExtractorURL == "" {
		return fmt.Errorf("config: FACEID_EXTRACTOR_URL cannot be empty")
	}
	if c.Model == "" {
		return fmt.Errorf("config: FACEID_MODEL cannot be empty")
	}
	if c.EmbeddingDim <= 0 {
		return fmt.Errorf("config: FACEID_EMBEDDING_DIM must be positive, got %d", c.EmbeddingDim)
	}
	if c.Threshold < -1 || c.Threshold > 1 {
		return fmt.Errorf("config: FACEID_THRESHOLD must be in [-1, 1], got %g", c.Threshold)
	}
	if c.ExtractTimeout <= 0 {
		return fmt.Errorf("config: FACEID_EXTRACT_TIMEOUT must be positive, got %s", c.ExtractTimeout)
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return parsed, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return parsed, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return parsed, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return parsed, nil
}
