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

import "errors"

// Domain validation errors
var (
	// ErrInvalidRecord indicates an EmployeeRecord failed validation.
	ErrInvalidRecord = errors.New("invalid employee record")

	// ErrEmptyOrganizationID indicates an organization id is empty.
	ErrEmptyOrganizationID = errors.New("organization id cannot be empty")

	// ErrEmptyEmployeeID indicates an employee id is empty.
	ErrEmptyEmployeeID = errors.New("employee id cannot be empty")

	// ErrReservedIDCharacter indicates an id contains a character the
	// storage layer reserves for paths or composite keys.
	ErrReservedIDCharacter = errors.New("id contains a reserved character")

	// ErrEmptyEmbedding indicates an embedding has no components.
	ErrEmptyEmbedding = errors.New("embedding cannot be empty")

	// ErrDimensionMismatch indicates an embedding has the wrong length
	// for the configured model.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
