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

// Package facerec implements the recognition workflows: register,
// identify, verify, deregister, status and stats.
//
// The Service wires together three collaborators:
//
//   - storage.Store for durable collections and enrollment photos
//   - cache.CollectionCache for hot-path reads
//   - extract.Extractor for turning images into embeddings
//
// # Write path
//
// Mutating workflows serialize per organization. Each holds the
// organization's mutex across load, modify, persist and cache update,
// so the durable artifact and the cached snapshot never diverge and
// concurrent registrations never lose a record. A persist failure
// aborts before the cache is touched.
//
// # Read path
//
// Identify, Verify, Status and Stats read immutable snapshots through
// the cache and take no lock.
package facerec
