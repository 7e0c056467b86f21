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


package core

import "fmt"

// ValidatePosting validates a Posting according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - ExternalId must be present (postings without one are unpersistable)
//
// NOT validated:
//   - Vector (nil until the embedder runs)
//   - Id (0 is valid before the database sequence assigns one)
//   - Author, Status, AppliedAt (optional fields)
func ValidatePosting(posting *Posting) error {
	if posting == nil {
		return fmt.Errorf("%w: posting is nil", ErrInvalidPosting)
	}

	if posting.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPosting, ErrEmptyText)
	}

	if !posting.HasExternalId() {
		return fmt.Errorf("%w: %w", ErrInvalidPosting, ErrMissingExternalId)
	}

	return nil
}

// PersistableRaw reports whether a RawPosting can enter the store:
// it needs both an external identifier and non-empty content.
func PersistableRaw(raw *RawPosting) bool {
	return raw != nil && raw.ExternalId != 0 && raw.Text != ""
}
