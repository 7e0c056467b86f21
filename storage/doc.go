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


// Package storage provides the storage abstraction layer for hnjobs.
//
// It defines the repository interfaces that decouple storage implementation
// from business logic, plus the MUS binary serialization for persisted
// records. The only shipping backend lives in storage/badger.
//
// # Constructor Return Type Pattern
//
// Public backend constructors return interface types to enforce abstraction:
//
//	repo, err := badger.NewPostingRepository(backend)  // storage.PostingRepository
//
// # Transactional contract
//
// ApplyBatch is the single write path used by ingestion. It is all-or-nothing:
// a failure while applying any staged row leaves the store exactly as it was
// before the batch. Readers always observe a consistent snapshot; an
// in-progress batch is invisible until it commits.
//
// # Thread Safety
//
// All repository implementations must be safe for concurrent use from
// multiple goroutines. There is at most one writer (the ingestor) at a time;
// reads never block on it.
package storage
