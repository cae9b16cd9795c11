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

package core

import (
	"fmt"
	"strings"
)

// reservedIDChars are characters no id may contain. Slash and
// backslash would let an id traverse filesystem paths, the colon is
// the composite key separator, and NUL is never legal in a key.
const reservedIDChars = "/\\:\x00"

// checkIDText rejects ids that could escape a storage path or make a
// composite key ambiguous. Ids are used verbatim as path and key
// segments, so a segment must never be a traversal element.
func checkIDText(id string) error {
	if id == "." || id == ".." {
		return fmt.Errorf("id %q: %w", id, ErrReservedIDCharacter)
	}
	if strings.ContainsAny(id, reservedIDChars) {
		return fmt.Errorf("id %q: %w", id, ErrReservedIDCharacter)
	}
	return nil
}

// ValidateOrganizationID validates a tenant identifier.
// Organization ids are opaque caller-supplied strings; they must be
// non-empty after trimming and free of reserved storage characters.
func ValidateOrganizationID(orgID string) error {
	orgID = CanonicalID(orgID)
	if orgID == "" {
		return ErrEmptyOrganizationID
	}
	return checkIDText(orgID)
}

// ValidateEmployeeID validates an employee identifier after
// canonicalization.
func ValidateEmployeeID(empID string) error {
	if empID == "" {
		return ErrEmptyEmployeeID
	}
	return checkIDText(empID)
}

// ValidateRecord validates an EmployeeRecord according to domain rules.
//
// Validation rules:
//   - EmployeeID must not be empty
//   - Embedding must not be empty
//   - Embedding must match dim when dim > 0
//
// RegisteredAt is not validated; a zero timestamp is legal for records
// upgraded from the legacy storage format.
func ValidateRecord(record *EmployeeRecord, dim int) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if record.EmployeeID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyEmployeeID)
	}

	if len(record.Embedding) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyEmbedding)
	}

	if dim > 0 && len(record.Embedding) != dim {
		return fmt.Errorf("%w: %w: got %d, want %d",
			ErrInvalidRecord, ErrDimensionMismatch, len(record.Embedding), dim)
	}

	return nil
}
