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

// Package match implements the similarity-matching engine: cosine
// similarity between face embeddings and thresholded best-match search
// over an organization's collection.
//
// All functions are pure and side-effect free. Search is a linear scan;
// tenant populations are small enough (tens to low thousands) that no
// index is warranted.
package match
