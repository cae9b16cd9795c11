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

package facerec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/corehive/faceid/cache"
	"github.com/corehive/faceid/core"
	"github.com/corehive/faceid/extract"
	"github.com/corehive/faceid/match"
	"github.com/corehive/faceid/storage"
)

const defaultExtractTimeout = 10 * time.Second

// Service orchestrates the recognition workflows over a storage
// backend, a collection cache, and an embedding extractor.
//
// Writers serialize per organization: every mutating workflow takes the
// organization's mutex across the load-modify-persist-cache sequence,
// so concurrent registrations in one organization never lose a record.
// Readers go through immutable cache snapshots and take no lock.
type Service struct {
	store     storage.Store
	cache     *cache.CollectionCache
	extractor extract.Extractor

	threshold      float64
	extractTimeout time.Duration

	orgLocksMu sync.Mutex
	orgLocks   map[string]*sync.Mutex

	warmupPool *ants.Pool
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithThreshold sets the minimum cosine similarity for a match.
func WithThreshold(threshold float64) Option {
	return func(s *Service) error {
		if threshold < -1 || threshold > 1 {
			return fmt.Errorf("threshold must be in [-1, 1], got %g", threshold)
		}
		s.threshold = threshold
		return nil
	}
}

// WithExtractTimeout bounds every extraction call.
func WithExtractTimeout(timeout time.Duration) Option {
	return func(s *Service) error {
		if timeout <= 0 {
			return fmt.Errorf("extract timeout must be positive, got %s", timeout)
		}
		s.extractTimeout = timeout
		return nil
	}
}

// WithWarmupPoolSize sets the worker pool size for Warmup.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithWarmupPoolSize(size int) Option {
	return func(s *Service) error {
		if size < 1 {
			size = 1
		}
		if s.warmupPool != nil {
			s.warmupPool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.warmupPool = pool
		return nil
	}
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		s.logger = logger
		return nil
	}
}

// NewService creates a Service with the default threshold of 0.65.
func NewService(store storage.Store, collectionCache *cache.CollectionCache, extractor extract.Extractor, opts ...Option) (*Service, error) {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	s := &Service{
		store:          store,
		cache:          collectionCache,
		extractor:      extractor,
		threshold:      0.65,
		extractTimeout: defaultExtractTimeout,
		orgLocks:       make(map[string]*sync.Mutex),
		warmupPool:     pool,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			pool.Release()
			return nil, err
		}
	}
	return s, nil
}

// Release releases the warmup worker pool.
func (s *Service) Release() {
	s.warmupPool.Release()
}

// Info returns the service configuration for health reporting.
func (s *Service) Info() Info {
	return Info{
		Model:        s.extractor.ModelName(),
		EmbeddingDim: s.extractor.Dimension(),
		Threshold:    s.threshold,
	}
}

// orgLock returns the mutex serializing writers for an organization,
// creating it on first use.
func (s *Service) orgLock(orgID string) *sync.Mutex {
	s.orgLocksMu.Lock()
	defer s.orgLocksMu.Unlock()
	mu, ok := s.orgLocks[orgID]
	if !ok {
		mu = &sync.Mutex{}
		s.orgLocks[orgID] = mu
	}
	return mu
}

// extractEmbedding runs the extractor under the configured timeout.
func (s *Service) extractEmbedding(ctx context.Context, image []byte) (*extract.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.extractTimeout)
	defer cancel()

	result, err := s.extractor.Extract(ctx, image)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: after %s", ErrExtractionTimeout, s.extractTimeout)
		}
		return nil, err
	}
	return result, nil
}

// Register extracts an embedding from the image and stores it for the
// employee, replacing any previous registration. The photo is kept
// best-effort; a photo failure never fails the registration. An
// embedding persist failure aborts the whole operation and leaves the
// cache untouched.
func (s *Service) Register(ctx context.Context, orgID, employeeID string, image []byte) (*RegisterResult, error) {
	orgID, employeeID, err := canonicalIDs(orgID, employeeID)
	if err != nil {
		return nil, err
	}
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}

	logger := s.requestLogger("register", orgID, "employee", employeeID)

	extracted, err := s.extractEmbedding(ctx, image)
	if err != nil {
		logger.Warn("extraction failed", "error", err)
		return nil, err
	}

	photoSaved := true
	if err := s.store.SavePhoto(ctx, orgID, employeeID, image); err != nil {
		logger.Warn("photo save failed, continuing", "error", err)
		photoSaved = false
	}

	mu := s.orgLock(orgID)
	mu.Lock()
	defer mu.Unlock()

	collection, err := s.cache.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}

	_, replaced := collection[employeeID]
	record := &core.EmployeeRecord{
		EmployeeID:   employeeID,
		Embedding:    extracted.Embedding,
		RegisteredAt: time.Now().UTC(),
	}
	if err := core.ValidateRecord(record, s.extractor.Dimension()); err != nil {
		return nil, err
	}
	collection[employeeID] = record

	if err := s.store.SaveCollection(ctx, orgID, collection); err != nil {
		logger.Error("collection persist failed", "error", err)
		return nil, err
	}
	s.cache.Put(orgID, collection)

	logger.Info("employee registered",
		"replaced", replaced, "photo_saved", photoSaved, "employees", collection.Len())
	return &RegisterResult{
		OrganizationID: orgID,
		EmployeeID:     employeeID,
		Outcome:        OutcomeRegistered,
		Replaced:       replaced,
		PhotoSaved:     photoSaved,
		RegisteredAt:   record.RegisteredAt,
	}, nil
}

// Identify extracts an embedding from the probe image and returns the
// best match among the organization's registered employees. A probe
// without a face and an organization with no registered employees are
// expected outcomes, reported in the result rather than as errors.
func (s *Service) Identify(ctx context.Context, orgID string, image []byte) (*IdentifyResult, error) {
	orgID = core.CanonicalID(orgID)
	if err := core.ValidateOrganizationID(orgID); err != nil {
		return nil, err
	}
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}

	logger := s.requestLogger("identify", orgID)

	extracted, err := s.extractEmbedding(ctx, image)
	if err != nil {
		if errors.Is(err, extract.ErrNoFace) {
			logger.Info("no face in probe image")
			return &IdentifyResult{
				OrganizationID: orgID,
				Outcome:        OutcomeNoFace,
				Threshold:      s.threshold,
			}, nil
		}
		logger.Warn("extraction failed", "error", err)
		return nil, err
	}

	collection, err := s.cache.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if collection.Len() == 0 {
		logger.Info("no registered employees")
		return &IdentifyResult{
			OrganizationID: orgID,
			Outcome:        OutcomeNoRegisteredEmployees,
			Threshold:      s.threshold,
		}, nil
	}

	result := match.BestMatch(extracted.Embedding, collection, s.threshold)
	outcome := OutcomeNoMatch
	if result.Matched {
		outcome = OutcomeMatched
	}
	logger.Info("identification complete",
		"outcome", outcome, "score", result.Score, "candidates", collection.Len())
	return &IdentifyResult{
		OrganizationID: orgID,
		Outcome:        outcome,
		EmployeeID:     result.EmployeeID,
		Score:          result.Score,
		Threshold:      s.threshold,
		Candidates:     collection.Len(),
	}, nil
}

// Verify compares the probe image against the claimed employee's stored
// embedding. Returns ErrNotRegistered when the employee has no
// embedding for the organization.
func (s *Service) Verify(ctx context.Context, orgID, employeeID string, image []byte) (*VerifyResult, error) {
	orgID, employeeID, err := canonicalIDs(orgID, employeeID)
	if err != nil {
		return nil, err
	}
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}

	logger := s.requestLogger("verify", orgID, "employee", employeeID)

	collection, err := s.cache.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	record, ok := collection[employeeID]
	if !ok {
		logger.Info("employee not registered")
		return nil, fmt.Errorf("employee %s/%s: %w", orgID, employeeID, ErrNotRegistered)
	}

	extracted, err := s.extractEmbedding(ctx, image)
	if err != nil {
		if errors.Is(err, extract.ErrNoFace) {
			logger.Info("no face in probe image")
			return &VerifyResult{
				OrganizationID: orgID,
				EmployeeID:     employeeID,
				Outcome:        OutcomeNoFace,
				Threshold:      s.threshold,
			}, nil
		}
		logger.Warn("extraction failed", "error", err)
		return nil, err
	}

	score := match.Similarity(extracted.Embedding, record.Embedding)
	verified := score >= s.threshold
	outcome := OutcomeNotVerified
	if verified {
		outcome = OutcomeVerified
	}
	logger.Info("verification complete", "outcome", outcome, "score", score)
	return &VerifyResult{
		OrganizationID: orgID,
		EmployeeID:     employeeID,
		Outcome:        outcome,
		Verified:       verified,
		Score:          score,
		Threshold:      s.threshold,
	}, nil
}

// Deregister removes the employee's embedding and photo. Returns
// ErrNotRegistered when the employee has no embedding stored. The photo
// delete is best-effort.
func (s *Service) Deregister(ctx context.Context, orgID, employeeID string) (*DeregisterResult, error) {
	orgID, employeeID, err := canonicalIDs(orgID, employeeID)
	if err != nil {
		return nil, err
	}

	logger := s.requestLogger("deregister", orgID, "employee", employeeID)

	mu := s.orgLock(orgID)
	mu.Lock()
	defer mu.Unlock()

	collection, err := s.cache.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if _, ok := collection[employeeID]; !ok {
		logger.Info("employee not registered")
		return nil, fmt.Errorf("employee %s/%s: %w", orgID, employeeID, ErrNotRegistered)
	}
	delete(collection, employeeID)

	if collection.Len() == 0 {
		err = s.store.DeleteCollection(ctx, orgID)
	} else {
		err = s.store.SaveCollection(ctx, orgID, collection)
	}
	if err != nil {
		logger.Error("collection persist failed", "error", err)
		return nil, err
	}
	s.cache.Put(orgID, collection)

	photoDeleted := true
	if err := s.store.DeletePhoto(ctx, orgID, employeeID); err != nil {
		logger.Warn("photo delete failed, continuing", "error", err)
		photoDeleted = false
	}

	logger.Info("employee deregistered", "remaining", collection.Len())
	return &DeregisterResult{
		OrganizationID: orgID,
		EmployeeID:     employeeID,
		Outcome:        OutcomeDeregistered,
		PhotoDeleted:   photoDeleted,
		Remaining:      collection.Len(),
	}, nil
}

// Status reports the employee's enrollment state, including whether an
// enrollment photo is on file.
func (s *Service) Status(ctx context.Context, orgID, employeeID string) (*StatusInfo, error) {
	orgID, employeeID, err := canonicalIDs(orgID, employeeID)
	if err != nil {
		return nil, err
	}

	collection, err := s.cache.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}

	info := &StatusInfo{
		OrganizationID: orgID,
		EmployeeID:     employeeID,
	}
	if record, ok := collection[employeeID]; ok {
		info.Registered = true
		info.RegisteredAt = record.RegisteredAt
		info.EmbeddingDim = len(record.Embedding)
	}

	hasPhoto, err := s.store.HasPhoto(ctx, orgID, employeeID)
	if err != nil {
		return nil, err
	}
	info.PhotoExists = hasPhoto
	return info, nil
}

// Stats reports aggregate enrollment state for an organization.
func (s *Service) Stats(ctx context.Context, orgID string) (*OrgStats, error) {
	orgID = core.CanonicalID(orgID)
	if err := core.ValidateOrganizationID(orgID); err != nil {
		return nil, err
	}

	cached := s.cache.Contains(orgID)
	collection, err := s.cache.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return &OrgStats{
		OrganizationID: orgID,
		EmployeeCount:  collection.Len(),
		EmployeeIDs:    collection.IDs(),
		Cached:         cached,
	}, nil
}

// InvalidateCache drops the organization's cached collection. The next
// read reloads from storage.
func (s *Service) InvalidateCache(orgID string) {
	s.cache.Invalidate(core.CanonicalID(orgID))
}

// Warmup loads every persisted organization's collection into the cache
// using the worker pool. Per-organization failures are logged and
// skipped; Warmup fails only when the organization list itself cannot
// be read.
func (s *Service) Warmup(ctx context.Context) error {
	orgs, err := s.store.ListOrganizations(ctx)
	if err != nil {
		return fmt.Errorf("warmup: %w", err)
	}

	var wg sync.WaitGroup
	for _, orgID := range orgs {
		wg.Add(1)
		orgID := orgID
		err := s.warmupPool.Submit(func() {
			defer wg.Done()
			if _, err := s.cache.Get(ctx, orgID); err != nil {
				s.logger.Warn("warmup load failed", "org", orgID, "error", err)
			}
		})
		if err != nil {
			wg.Done()
			s.logger.Warn("warmup submit failed", "org", orgID, "error", err)
		}
	}
	wg.Wait()

	s.logger.Info("warmup complete", "organizations", len(orgs), "cached", s.cache.Len())
	return nil
}

// requestLogger returns a logger carrying a correlation id and the
// request attributes.
func (s *Service) requestLogger(op, orgID string, extra ...any) *slog.Logger {
	attrs := append([]any{"request_id", uuid.NewString(), "op", op, "org", orgID}, extra...)
	return s.logger.With(attrs...)
}

// canonicalIDs trims and validates the organization and employee ids.
func canonicalIDs(orgID, employeeID string) (string, string, error) {
	orgID = core.CanonicalID(orgID)
	employeeID = core.CanonicalID(employeeID)
	if err := core.ValidateOrganizationID(orgID); err != nil {
		return "", "", err
	}
	if err := core.ValidateEmployeeID(employeeID); err != nil {
		return "", "", err
	}
	return orgID, employeeID, nil
}
