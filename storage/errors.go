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

import "errors"

var (
	// ErrNotFound indicates that the requested artifact does not exist.
	// Normal absence: never used for backend failures.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable indicates a backend I/O failure (network, disk,
	// credentials). Callers can always tell "no data" from "storage
	// broken".
	ErrUnavailable = errors.New("storage unavailable")

	// ErrSerializationFailed indicates a collection artifact could not
	// be encoded or decoded.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrUnknownFormat indicates an artifact carries an unrecognized
	// format tag.
	ErrUnknownFormat = errors.New("unknown collection format")

	// ErrStorageClosed indicates the backend has been closed.
	ErrStorageClosed = errors.New("storage is closed")
)
