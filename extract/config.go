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

package extract

import (
	"errors"
	"strings"
)

// Config holds configuration for extraction backends.
type Config struct {
	// Host is the base URL of the extraction service.
	// Example: "http://localhost:5005"
	Host string

	// Model is the extraction model identifier.
	// "Facenet" produces 128-dim embeddings, "Facenet512" 512-dim.
	Model string

	// Dimension is the embedding length the model produces.
	Dimension int

	// Detector selects the face-detection backend on the service side.
	// Default: "opencv" (fast).
	Detector string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the extraction service base URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the extraction model and its embedding dimension.
func WithModel(model string, dimension int) ConfigOption {
	return func(c *Config) {
		c.Model = model
		c.Dimension = dimension
	}
}

// WithDetector sets the detection backend identifier.
func WithDetector(detector string) ConfigOption {
	return func(c *Config) {
		c.Detector = detector
	}
}

// DefaultConfig returns a Config with the standard deployment
// defaults: Facenet (128-dim) behind a local service, opencv detection.
func DefaultConfig() *Config {
	return &Config{
		Host:      "http://localhost:5005",
		Model:     "Facenet",
		Dimension: 128,
		Detector:  "opencv",
	}
}

// NewConfig creates a Config with defaults and applies the provided
// options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate checks that the configuration is complete.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return errors.New("extract config: Host is required")
	}
	if c.Model == "" {
		return errors.New("extract config: Model is required")
	}
	if c.Dimension <= 0 {
		return errors.New("extract config: Dimension must be positive")
	}
	return nil
}
