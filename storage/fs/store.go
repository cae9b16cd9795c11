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

// Package fs implements storage.Store on the local filesystem.
//
// Layout under the data directory:
//
//	collections/<org>.bin         serialized embedding collection
//	photos/<org>/<employee>.jpg   enrollment photo
//
// Writes go to a temp file in the same directory followed by an atomic
// rename, so readers never observe a partially written artifact.
package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/corehive/faceid/core"
	"github.com/corehive/faceid/storage"
)

const (
	collectionsDir = "collections"
	photosDir      = "photos"

	collectionExt = ".bin"
	photoExt      = ".jpg"

	dirPerm  = 0o755
	filePerm = 0o644
)

// Store persists collections and photos under a single data directory.
type Store struct {
	root   string
	logger *slog.Logger
	closed atomic.Bool
}

var _ storage.Store = (*Store)(nil)

// NewStore creates the directory layout under root if needed and returns
// a ready store.
func NewStore(root string, logger *slog.Logger) (storage.Store, error) {
	if root == "" {
		return nil, fmt.Errorf("fs: empty root directory")
	}
	if logger == nil {
		logger = slog.Default()
	}
	for _, dir := range []string{root, filepath.Join(root, collectionsDir), filepath.Join(root, photosDir)} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return nil, fmt.Errorf("fs: create %s: %w", dir, err)
		}
	}
	logger.Debug("filesystem store opened", "root", root)
	return &Store{root: root, logger: logger}, nil
}

func (s *Store) collectionPath(orgID string) string {
	return filepath.Join(s.root, collectionsDir, orgID+collectionExt)
}

func (s *Store) photoPath(orgID, employeeID string) string {
	return filepath.Join(s.root, photosDir, orgID, employeeID+photoExt)
}

// validateIDs guards every photo path. Ids become path segments
// verbatim, so both must pass the reserved-character rules.
func validateIDs(orgID, employeeID string) error {
	if err := core.ValidateOrganizationID(orgID); err != nil {
		return err
	}
	return core.ValidateEmployeeID(employeeID)
}

// SaveCollection serializes and atomically replaces the organization's
// collection artifact.
func (s *Store) SaveCollection(ctx context.Context, orgID string, collection core.Collection) error {
	if s.closed.Load() {
		return storage.ErrStorageClosed
	}
	if err := core.ValidateOrganizationID(orgID); err != nil {
		return err
	}
	data := storage.MarshalCollection(collection)
	if err := writeAtomic(s.collectionPath(orgID), data); err != nil {
		return fmt.Errorf("fs: save collection %s: %w: %w", orgID, storage.ErrUnavailable, err)
	}
	s.logger.Debug("collection saved", "org", orgID, "employees", collection.Len(), "bytes", len(data))
	return nil
}

// LoadCollection reads and deserializes the organization's collection.
// Returns storage.ErrNotFound when no artifact exists.
func (s *Store) LoadCollection(ctx context.Context, orgID string) (core.Collection, error) {
	if s.closed.Load() {
		return nil, storage.ErrStorageClosed
	}
	if err := core.ValidateOrganizationID(orgID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.collectionPath(orgID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("collection %s: %w", orgID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("fs: load collection %s: %w: %w", orgID, storage.ErrUnavailable, err)
	}
	return storage.UnmarshalCollection(data)
}

// DeleteCollection removes the organization's artifact. Deleting an
// absent collection is not an error.
func (s *Store) DeleteCollection(ctx context.Context, orgID string) error {
	if s.closed.Load() {
		return storage.ErrStorageClosed
	}
	if err := core.ValidateOrganizationID(orgID); err != nil {
		return err
	}
	if err := os.Remove(s.collectionPath(orgID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("fs: delete collection %s: %w: %w", orgID, storage.ErrUnavailable, err)
	}
	return nil
}

// ListOrganizations returns the IDs of all organizations with a stored
// collection, in lexicographic order.
func (s *Store) ListOrganizations(ctx context.Context) ([]string, error) {
	if s.closed.Load() {
		return nil, storage.ErrStorageClosed
	}
	entries, err := os.ReadDir(filepath.Join(s.root, collectionsDir))
	if err != nil {
		return nil, fmt.Errorf("fs: list organizations: %w: %w", storage.ErrUnavailable, err)
	}
	orgs := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, collectionExt) {
			continue
		}
		orgs = append(orgs, strings.TrimSuffix(name, collectionExt))
	}
	return orgs, nil
}

// SavePhoto stores the enrollment photo for an employee.
func (s *Store) SavePhoto(ctx context.Context, orgID, employeeID string, photo []byte) error {
	if s.closed.Load() {
		return storage.ErrStorageClosed
	}
	if err := validateIDs(orgID, employeeID); err != nil {
		return err
	}
	path := s.photoPath(orgID, employeeID)
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("fs: save photo %s/%s: %w: %w", orgID, employeeID, storage.ErrUnavailable, err)
	}
	if err := writeAtomic(path, photo); err != nil {
		return fmt.Errorf("fs: save photo %s/%s: %w: %w", orgID, employeeID, storage.ErrUnavailable, err)
	}
	return nil
}

// GetPhoto returns the stored photo or storage.ErrNotFound.
func (s *Store) GetPhoto(ctx context.Context, orgID, employeeID string) ([]byte, error) {
	if s.closed.Load() {
		return nil, storage.ErrStorageClosed
	}
	if err := validateIDs(orgID, employeeID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.photoPath(orgID, employeeID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("photo %s/%s: %w", orgID, employeeID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("fs: get photo %s/%s: %w: %w", orgID, employeeID, storage.ErrUnavailable, err)
	}
	return data, nil
}

// DeletePhoto removes the photo. Deleting an absent photo is not an error.
func (s *Store) DeletePhoto(ctx context.Context, orgID, employeeID string) error {
	if s.closed.Load() {
		return storage.ErrStorageClosed
	}
	if err := validateIDs(orgID, employeeID); err != nil {
		return err
	}
	if err := os.Remove(s.photoPath(orgID, employeeID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("fs: delete photo %s/%s: %w: %w", orgID, employeeID, storage.ErrUnavailable, err)
	}
	return nil
}

// HasPhoto reports whether a photo is stored for the employee.
func (s *Store) HasPhoto(ctx context.Context, orgID, employeeID string) (bool, error) {
	if s.closed.Load() {
		return false, storage.ErrStorageClosed
	}
	if err := validateIDs(orgID, employeeID); err != nil {
		return false, err
	}
	_, err := os.Stat(s.photoPath(orgID, employeeID))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("fs: stat photo %s/%s: %w: %w", orgID, employeeID, storage.ErrUnavailable, err)
	}
	return true, nil
}

// Close marks the store closed. Subsequent calls fail with
// storage.ErrStorageClosed.
func (s *Store) Close() error {
	s.closed.Store(true)
	return nil
}

// writeAtomic writes data to a temp file in the target directory and
// renames it over path.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
