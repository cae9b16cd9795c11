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

// Package core defines the domain model for the face identity service:
// embeddings, employee records, per-organization collections, and their
// binary serialization.
//
// Identifiers are opaque caller-supplied strings. Employee ids are
// canonicalized exactly once with CanonicalID at the workflow
// boundary; everything below the boundary assumes canonical keys.
//
// Collections iterate in lexicographic employee-id order (Collection.IDs).
// This is the stable order the matching engine and the storage codec rely
// on for reproducible tie-breaking and byte-identical artifacts.
package core
