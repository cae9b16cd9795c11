package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendFS, cfg.StorageBackend)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, DefaultExtractorURL, cfg.ExtractorURL)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultEmbeddingDim, cfg.EmbeddingDim)
	assert.Equal(t, DefaultDetector, cfg.Detector)
	assert.Equal(t, DefaultThreshold, cfg.Threshold)
	assert.Equal(t, DefaultExtractTimeout, cfg.ExtractTimeout)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("FACEID_STORAGE_BACKEND", "badger")
	t.Setenv("FACEID_DATA_DIR", "/var/lib/faceid")
	t.Setenv("FACEID_MODEL", "Facenet512")
	t.Setenv("FACEID_EMBEDDING_DIM", "512")
	t.Setenv("FACEID_THRESHOLD", "0.75")
	t.Setenv("FACEID_EXTRACT_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendBadger, cfg.StorageBackend)
	assert.Equal(t, "/var/lib/faceid", cfg.DataDir)
	assert.Equal(t, "Facenet512", cfg.Model)
	assert.Equal(t, 512, cfg.EmbeddingDim)
	assert.Equal(t, 0.75, cfg.Threshold)
	assert.Equal(t, 30*time.Second, cfg.ExtractTimeout)
}

func TestLoad_S3RequiresEndpoint(t *testing.T) {
	t.Setenv("FACEID_STORAGE_BACKEND", "s3")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("FACEID_S3_ENDPOINT", "minio.internal:9000")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "minio.internal:9000", cfg.S3Endpoint)
	assert.Equal(t, "faceid", cfg.S3Bucket)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown backend", "FACEID_STORAGE_BACKEND", "oracle"},
		{"non-numeric dimension", "FACEID_EMBEDDING_DIM", "lots"},
		{"negative dimension", "FACEID_EMBEDDING_DIM", "-1"},
		{"threshold out of range", "FACEID_THRESHOLD", "2.0"},
		{"non-numeric threshold", "FACEID_THRESHOLD", "high"},
		{"bad duration", "FACEID_EXTRACT_TIMEOUT", "soon"},
		{"negative timeout", "FACEID_EXTRACT_TIMEOUT", "-5s"},
		{"bad bool", "FACEID_S3_USE_SSL", "yep"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := &Config{
		StorageBackend: BackendFS,
		DataDir:        "./data",
		ExtractorURL:   "http://localhost:5005",
		Model:          "Facenet",
		EmbeddingDim:   128,
		Threshold:      0.65,
		ExtractTimeout: 10 * time.Second,
	}
	require.NoError(t, valid.Validate())

	t.Run("empty data dir", func(t *testing.T) {
		cfg := *valid
		cfg.DataDir = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("empty model", func(t *testing.T) {
		cfg := *valid
		cfg.Model = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("empty extractor url", func(t *testing.T) {
		cfg := *valid
		cfg.ExtractorURL = ""
		assert.Error(t, cfg.Validate())
	})
}
