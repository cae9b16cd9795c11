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

// Package storage provides the durable persistence abstraction for
// per-organization embedding collections and enrollment photos.
//
// # Constructor Return Type Pattern
//
// Backend packages return the storage.Store interface from their public
// constructors to enforce abstraction and keep backends swappable:
//
//	store, err := fs.NewStore(dataDir)          // local filesystem
//	store, err := badgerstore.NewStore(path)    // embedded BadgerDB
//	store, err := s3.NewStore(cfg)              // S3-compatible object store
//
// # Failure semantics
//
// Absence and failure are distinct: LoadCollection returns ErrNotFound
// when nothing was ever saved, and wraps ErrUnavailable for backend I/O
// faults. Callers (and tests) can always tell "no data" from "storage
// broken".
//
// # Artifact format
//
// One artifact per organization holds the serialized collection; one
// blob per (organization, employee) holds the photo. Artifacts are
// format-tagged (see FormatLegacy, FormatTagged) and decoded exactly once
// at this boundary.
//
// # Thread Safety
//
// All backends must be safe for concurrent use from multiple goroutines.
package storage
