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

// Package faceid assembles the storage backend, collection cache,
// embedding extractor and recognition service from a single Config.
package faceid

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/corehive/faceid/cache"
	"github.com/corehive/faceid/config"
	"github.com/corehive/faceid/extract"
	"github.com/corehive/faceid/extract/deepface"
	"github.com/corehive/faceid/facerec"
	"github.com/corehive/faceid/storage"
	"github.com/corehive/faceid/storage/badgerstore"
	"github.com/corehive/faceid/storage/fs"
	"github.com/corehive/faceid/storage/s3"
)

// System bundles the assembled components.
type System struct {
	store     storage.Store
	cache     *cache.CollectionCache
	extractor extract.Extractor
	service   *facerec.Service
	logger    *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	logger    *slog.Logger
	extractor extract.Extractor
}

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) SystemOption {
	return func(o *systemOptions) {
		o.logger = logger
	}
}

// WithExtractor overrides the extractor, replacing the deepface client
// built from the config. Used by tests and embedders with their own
// model runtime.
func WithExtractor(extractor extract.Extractor) SystemOption {
	return func(o *systemOptions) {
		o.extractor = extractor
	}
}

// NewSystem builds the full stack from a validated config.
func NewSystem(ctx context.Context, cfg *config.Config, opts ...SystemOption) (*System, error) {
	options := &systemOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	extractor := options.extractor
	if extractor == nil {
		extractCfg := extract.NewConfig(
			extract.WithHost(cfg.ExtractorURL),
			extract.WithModel(cfg.Model, cfg.EmbeddingDim),
			extract.WithDetector(cfg.Detector),
		)
		extractor, err = deepface.NewClient(extractCfg)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	collectionCache := cache.New(store, logger)

	service, err := facerec.NewService(store, collectionCache, extractor,
		facerec.WithThreshold(cfg.Threshold),
		facerec.WithExtractTimeout(cfg.ExtractTimeout),
		facerec.WithLogger(logger),
	)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &System{
		store:     store,
		cache:     collectionCache,
		extractor: extractor,
		service:   service,
		logger:    logger,
	}, nil
}

// openStore constructs the storage backend named by the config.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendFS:
		return fs.NewStore(cfg.DataDir, logger)
	case config.BackendBadger:
		return badgerstore.NewStore(filepath.Join(cfg.DataDir, "badger"), false, logger)
	case config.BackendS3:
		return s3.NewStore(ctx, s3.Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// Service returns the recognition service.
func (s *System) Service() *facerec.Service {
	return s.service
}

// Store returns the storage backend.
func (s *System) Store() storage.Store {
	return s.store
}

// Cache returns the collection cache.
func (s *System) Cache() *cache.CollectionCache {
	return s.cache
}

// Warmup preloads every persisted organization into the cache.
func (s *System) Warmup(ctx context.Context) error {
	return s.service.Warmup(ctx)
}

// Close releases the service pool and the storage backend.
func (s *System) Close() error {
	s.service.Release()
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing storage backend", "err", err)
		return err
	}
	return nil
}
