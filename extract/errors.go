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

package extract

import "errors"

var (
	// ErrNoFace indicates the input image contains no usable face.
	// Recoverable: the caller should retake the photo.
	ErrNoFace = errors.New("no face detected in image")

	// ErrExtraction indicates the extraction model or its transport
	// failed. Never conflated with ErrNoFace.
	ErrExtraction = errors.New("embedding extraction failed")
)
