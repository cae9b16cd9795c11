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

package storage

import (
	"fmt"

	"github.com/corehive/faceid/core"
)

// Collection artifacts start with a one-byte format tag so historical
// shapes stay readable. Legacy artifacts (bare id->vector map, no
// registration metadata) are upgraded to the in-memory representation at
// this boundary; nothing above the storage layer ever branches on shape.
const (
	// FormatLegacy is the original artifact shape: id -> vector only.
	FormatLegacy byte = 1
	// FormatTagged is the current shape: id -> full employee record.
	FormatTagged byte = 2
)

// MarshalCollection serializes a collection into a tagged artifact.
// Records are written in lexicographic employee-id order, so equal
// collections produce identical bytes.
func MarshalCollection(collection core.Collection) []byte {
	buf := make([]byte, 1+core.CollectionMUS.Size(collection))
	buf[0] = FormatTagged
	core.CollectionMUS.Marshal(collection, buf[1:])
	return buf
}

// UnmarshalCollection deserializes a tagged artifact, accepting both the
// current and the legacy format. Legacy records surface with a zero
// RegisteredAt.
func UnmarshalCollection(data []byte) (core.Collection, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty artifact", ErrSerializationFailed)
	}

	switch data[0] {
	case FormatTagged:
		collection, _, err := core.CollectionMUS.Unmarshal(data[1:])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
		return collection, nil
	case FormatLegacy:
		collection, _, err := core.LegacyCollectionMUS.Unmarshal(data[1:])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
		return collection, nil
	default:
		return nil, fmt.Errorf("%w: tag %d", ErrUnknownFormat, data[0])
	}
}

// MarshalLegacyCollection serializes a collection in the legacy shape.
// Only used by tests and migration tooling; production writes are always
// tagged.
func MarshalLegacyCollection(collection core.Collection) []byte {
	buf := make([]byte, 1+core.LegacyCollectionMUS.Size(collection))
	buf[0] = FormatLegacy
	core.LegacyCollectionMUS.Marshal(collection, buf[1:])
	return buf
}
