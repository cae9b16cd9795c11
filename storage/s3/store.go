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

// Package s3 implements storage.Store on any S3-compatible object store
// (AWS S3, MinIO, Azure via gateway). Collections and photos live in a
// single bucket:
//
//	collections/<org>.bin
//	photos/<org>/<employee>.jpg
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/corehive/faceid/core"
	"github.com/corehive/faceid/storage"
)

const (
	collectionsPrefix = "collections/"
	photosPrefix      = "photos/"

	collectionExt = ".bin"
	photoExt      = ".jpg"

	collectionContentType = "application/octet-stream"
	photoContentType      = "image/jpeg"
)

// Config holds the connection settings for an S3-compatible endpoint.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Validate checks that all required connection settings are present.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("s3: endpoint is required")
	}
	if c.Bucket == "" {
		return fmt.Errorf("s3: bucket is required")
	}
	return nil
}

// Store persists collections and photos as objects in a single bucket.
type Store struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

var _ storage.Store = (*Store)(nil)

// NewStore connects to the endpoint and ensures the bucket exists.
func NewStore(ctx context.Context, cfg Config, logger *slog.Logger) (storage.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: connect %s: %w: %w", cfg.Endpoint, storage.ErrUnavailable, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("s3: check bucket %s: %w: %w", cfg.Bucket, storage.ErrUnavailable, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("s3: create bucket %s: %w: %w", cfg.Bucket, storage.ErrUnavailable, err)
		}
	}

	logger.Debug("s3 store opened", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return &Store{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

func collectionObject(orgID string) string {
	return collectionsPrefix + orgID + collectionExt
}

func photoObject(orgID, employeeID string) string {
	return photosPrefix + orgID + "/" + employeeID + photoExt
}

// validateIDs guards every photo object name. Ids become key segments
// verbatim, so both must pass the reserved-character rules.
func validateIDs(orgID, employeeID string) error {
	if err := core.ValidateOrganizationID(orgID); err != nil {
		return err
	}
	return core.ValidateEmployeeID(employeeID)
}

// isNotFound reports whether err is the object store's missing-key error.
func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket"
}

// SaveCollection serializes and uploads the organization's collection.
// Object replacement is atomic on S3-compatible stores.
func (s *Store) SaveCollection(ctx context.Context, orgID string, collection core.Collection) error {
	if err := core.ValidateOrganizationID(orgID); err != nil {
		return err
	}
	data := storage.MarshalCollection(collection)
	_, err := s.client.PutObject(ctx, s.bucket, collectionObject(orgID),
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: collectionContentType})
	if err != nil {
		return fmt.Errorf("s3: save collection %s: %w: %w", orgID, storage.ErrUnavailable, err)
	}
	s.logger.Debug("collection saved", "org", orgID, "employees", collection.Len(), "bytes", len(data))
	return nil
}

// LoadCollection downloads and deserializes the organization's
// collection. Returns storage.ErrNotFound when no object exists.
func (s *Store) LoadCollection(ctx context.Context, orgID string) (core.Collection, error) {
	if err := core.ValidateOrganizationID(orgID); err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, collectionObject(orgID), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("s3: load collection %s: %w: %w", orgID, storage.ErrUnavailable, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("collection %s: %w", orgID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("s3: load collection %s: %w: %w", orgID, storage.ErrUnavailable, err)
	}
	return storage.UnmarshalCollection(data)
}

// DeleteCollection removes the organization's object. Deleting an
// absent collection is not an error.
func (s *Store) DeleteCollection(ctx context.Context, orgID string) error {
	if err := core.ValidateOrganizationID(orgID); err != nil {
		return err
	}
	err := s.client.RemoveObject(ctx, s.bucket, collectionObject(orgID), minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("s3: delete collection %s: %w: %w", orgID, storage.ErrUnavailable, err)
	}
	return nil
}

// ListOrganizations lists collection objects and returns the
// organization IDs they belong to.
func (s *Store) ListOrganizations(ctx context.Context) ([]string, error) {
	orgs := []string{}
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: collectionsPrefix}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("s3: list organizations: %w: %w", storage.ErrUnavailable, obj.Err)
		}
		name := strings.TrimPrefix(obj.Key, collectionsPrefix)
		if !strings.HasSuffix(name, collectionExt) {
			continue
		}
		orgs = append(orgs, strings.TrimSuffix(name, collectionExt))
	}
	return orgs, nil
}

// SavePhoto uploads the enrollment photo for an employee.
func (s *Store) SavePhoto(ctx context.Context, orgID, employeeID string, photo []byte) error {
	if err := validateIDs(orgID, employeeID); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucket, photoObject(orgID, employeeID),
		bytes.NewReader(photo), int64(len(photo)),
		minio.PutObjectOptions{ContentType: photoContentType})
	if err != nil {
		return fmt.Errorf("s3: save photo %s/%s: %w: %w", orgID, employeeID, storage.ErrUnavailable, err)
	}
	return nil
}

// GetPhoto downloads the stored photo or returns storage.ErrNotFound.
func (s *Store) GetPhoto(ctx context.Context, orgID, employeeID string) ([]byte, error) {
	if err := validateIDs(orgID, employeeID); err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, photoObject(orgID, employeeID), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("s3: get photo %s/%s: %w: %w", orgID, employeeID, storage.ErrUnavailable, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("photo %s/%s: %w", orgID, employeeID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("s3: get photo %s/%s: %w: %w", orgID, employeeID, storage.ErrUnavailable, err)
	}
	return data, nil
}

// DeletePhoto removes the photo object. Deleting an absent photo is not
// an error.
func (s *Store) DeletePhoto(ctx context.Context, orgID, employeeID string) error {
	if err := validateIDs(orgID, employeeID); err != nil {
		return err
	}
	err := s.client.RemoveObject(ctx, s.bucket, photoObject(orgID, employeeID), minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("s3: delete photo %s/%s: %w: %w", orgID, employeeID, storage.ErrUnavailable, err)
	}
	return nil
}

// HasPhoto reports whether a photo object exists for the employee.
func (s *Store) HasPhoto(ctx context.Context, orgID, employeeID string) (bool, error) {
	if err := validateIDs(orgID, employeeID); err != nil {
		return false, err
	}
	_, err := s.client.StatObject(ctx, s.bucket, photoObject(orgID, employeeID), minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("s3: stat photo %s/%s: %w: %w", orgID, employeeID, storage.ErrUnavailable, err)
	}
	return true, nil
}

// Close releases the store. The minio client holds no persistent
// connections that need closing.
func (s *Store) Close() error {
	return nil
}
