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

import "errors"

var (
	// ErrNotRegistered indicates the employee has no embedding stored
	// for the organization.
	ErrNotRegistered = errors.New("employee is not registered")

	// ErrExtractionTimeout indicates embedding extraction exceeded the
	// configured deadline.
	ErrExtractionTimeout = errors.New("embedding extraction timed out")

	// ErrEmptyImage indicates a workflow was given a zero-length image.
	ErrEmptyImage = errors.New("image cannot be empty")
)
