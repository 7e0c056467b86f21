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


// Package ingest scrapes a hiring thread and upserts its postings.
//
// The Ingestor fetches the thread page, extracts top-level comments, embeds
// each posting's text concurrently, and applies the resulting updates and
// inserts in a single storage transaction. Ingest reports counts instead of
// errors: a run that fails at any stage records nothing and returns (0, 0).
package ingest
