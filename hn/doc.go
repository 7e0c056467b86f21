// Copyright 2025 Poiesic Systems
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


// Package hn adapts the Hacker News frontend as a posting source.
//
// It has two halves: a Client that validates thread URLs and fetches page
// HTML (single attempt, bounded timeout), and an extractor that turns a
// parsed page tree into core.RawPosting candidates. The extractor is a pure
// function over the tree, so reply filtering and id derivation are testable
// without network access.
package hn
