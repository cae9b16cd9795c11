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

// Package badgerstore implements storage.Store on an embedded BadgerDB
// database. Collections and photos live in one database under distinct
// key prefixes, so a single directory holds all tenant state.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/corehive/faceid/core"
	"github.com/corehive/faceid/storage"
)

// Store wraps a BadgerDB instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ storage.Store = (*Store)(nil)

// badgerLoggerAdapter adapts slog.Logger to the badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// NewStore opens a BadgerDB database at the specified path.
// Creates the directory if it doesn't exist. With inMemory set the path
// is ignored and nothing touches disk.
func NewStore(filePath string, inMemory bool, logger *slog.Logger) (storage.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerstore: open: %w: %w", storage.ErrUnavailable, err)
	}

	return &Store{db: db, logger: logger}, nil
}

// withTx executes fn within a BadgerDB transaction. The transaction is
// discarded if fn returns an error without committing.
func (s *Store) withTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	if s.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	tx := s.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// SaveCollection serializes and stores the organization's collection.
func (s *Store) SaveCollection(ctx context.Context, orgID string, collection core.Collection) error {
	if err := core.ValidateOrganizationID(orgID); err != nil {
		return err
	}
	data := storage.MarshalCollection(collection)
	err := s.withTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeCollectionKey(orgID), data); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return wrapBadgerErr(fmt.Sprintf("save collection %s", orgID), err)
	}
	s.logger.Debug("collection saved", "org", orgID, "employees", collection.Len(), "bytes", len(data))
	return nil
}

// LoadCollection reads and deserializes the organization's collection.
// Returns storage.ErrNotFound when none was ever saved.
func (s *Store) LoadCollection(ctx context.Context, orgID string) (core.Collection, error) {
	if err := core.ValidateOrganizationID(orgID); err != nil {
		return nil, err
	}
	var collection core.Collection
	err := s.withTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCollectionKey(orgID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			collection, err = storage.UnmarshalCollection(val)
			return err
		})
	}, false)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("collection %s: %w", orgID, storage.ErrNotFound)
		}
		return nil, wrapBadgerErr(fmt.Sprintf("load collection %s", orgID), err)
	}
	return collection, nil
}

// DeleteCollection removes the organization's collection. Deleting an
// absent collection is not an error.
func (s *Store) DeleteCollection(ctx context.Context, orgID string) error {
	if err := core.ValidateOrganizationID(orgID); err != nil {
		return err
	}
	err := s.withTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeCollectionKey(orgID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return wrapBadgerErr(fmt.Sprintf("delete collection %s", orgID), err)
	}
	return nil
}

// ListOrganizations returns the IDs of all organizations with a stored
// collection, in lexicographic order.
func (s *Store) ListOrganizations(ctx context.Context) ([]string, error) {
	var orgs []string
	err := s.withTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(collectionPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := string(iter.Item().Key())
			orgs = append(orgs, strings.TrimPrefix(key, collectionPrefix+":"))
		}
		return nil
	}, false)
	if err != nil {
		return nil, wrapBadgerErr("list organizations", err)
	}
	return orgs, nil
}

// SavePhoto stores the enrollment photo for an employee.
func (s *Store) SavePhoto(ctx context.Context, orgID, employeeID string, photo []byte) error {
	if err := validateIDs(orgID, employeeID); err != nil {
		return err
	}
	err := s.withTx(func(tx *badger.Txn) error {
		if err := tx.Set(makePhotoKey(orgID, employeeID), photo); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return wrapBadgerErr(fmt.Sprintf("save photo %s/%s", orgID, employeeID), err)
	}
	return nil
}

// GetPhoto returns the stored photo or storage.ErrNotFound.
func (s *Store) GetPhoto(ctx context.Context, orgID, employeeID string) ([]byte, error) {
	if err := validateIDs(orgID, employeeID); err != nil {
		return nil, err
	}
	var photo []byte
	err := s.withTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makePhotoKey(orgID, employeeID))
		if err != nil {
			return err
		}
		photo, err = item.ValueCopy(nil)
		return err
	}, false)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("photo %s/%s: %w", orgID, employeeID, storage.ErrNotFound)
		}
		return nil, wrapBadgerErr(fmt.Sprintf("get photo %s/%s", orgID, employeeID), err)
	}
	return photo, nil
}

// DeletePhoto removes the photo. Deleting an absent photo is not an error.
func (s *Store) DeletePhoto(ctx context.Context, orgID, employeeID string) error {
	if err := validateIDs(orgID, employeeID); err != nil {
		return err
	}
	err := s.withTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makePhotoKey(orgID, employeeID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return wrapBadgerErr(fmt.Sprintf("delete photo %s/%s", orgID, employeeID), err)
	}
	return nil
}

// HasPhoto reports whether a photo is stored for the employee.
func (s *Store) HasPhoto(ctx context.Context, orgID, employeeID string) (bool, error) {
	if err := validateIDs(orgID, employeeID); err != nil {
		return false, err
	}
	found := false
	err := s.withTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makePhotoKey(orgID, employeeID))
		if err != nil {
			return err
		}
		found = true
		return nil
	}, false)
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return false, wrapBadgerErr(fmt.Sprintf("stat photo %s/%s", orgID, employeeID), err)
	}
	return found, nil
}

// Close closes the BadgerDB database.
func (s *Store) Close() error {
	return s.db.Close()
}

func wrapBadgerErr(op string, err error) error {
	if errors.Is(err, storage.ErrStorageClosed) ||
		errors.Is(err, storage.ErrSerializationFailed) ||
		errors.Is(err, storage.ErrUnknownFormat) {
		return err
	}
	if errors.Is(err, badger.ErrDBClosed) {
		return storage.ErrStorageClosed
	}
	return fmt.Errorf("badgerstore: %s: %w: %w", op, storage.ErrUnavailable, err)
}
