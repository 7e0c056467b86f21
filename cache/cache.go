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


// Package cache memoizes query embeddings so repeated searches skip the
// embedding service round trip.
package cache

import (
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity is the number of query embeddings retained.
const DefaultCapacity = 256

// EmbeddingCache is an LRU cache of query text to embedding vector.
// Safe for concurrent use.
type EmbeddingCache struct {
	entries *lru.Cache[string, []float32]
}

// NewEmbeddingCache creates a cache holding up to capacity embeddings.
// A capacity of 0 or less uses DefaultCapacity.
func NewEmbeddingCache(capacity int) (*EmbeddingCache, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	entries, err := lru.New[string, []float32](capacity)
	if err != nil {
		return nil, err
	}
	return &EmbeddingCache{entries: entries}, nil
}

// Get retrieves the cached embedding for text, if present.
func (c *EmbeddingCache) Get(text string) ([]float32, bool) {
	return c.entries.Get(keyFor(text))
}

// Put stores the embedding for text.
func (c *EmbeddingCache) Put(text string, vector []float32) {
	c.entries.Add(keyFor(text), vector)
}

// Len returns the number of cached embeddings.
func (c *EmbeddingCache) Len() int {
	return c.entries.Len()
}

// keyFor hashes the query text so long queries do not bloat the cache keys.
func keyFor(text string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
