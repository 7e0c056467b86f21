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


// Package ai provides the embedding abstraction used by hnjobs.
//
// The Embedder interface decouples the ingestion, search, and reembed
// packages from any concrete embedding provider. Two implementations ship
// with the module:
//
//   - ai/openai: production implementation over OpenAI-compatible APIs
//     (Ollama, LocalAI, vLLM, or the hosted OpenAI endpoint)
//   - ai/mock: deterministic test double with no external dependencies
//
// # Single shared instance
//
// Embedding vectors are only comparable within one vector space, so the same
// Embedder instance that indexed the corpus must embed every query. The
// facade constructs one Embedder at startup and passes it by reference to
// every collaborator; there is no package-level model state.
//
// # Constructor Return Type Pattern
//
// Public constructors return the ai.Embedder interface to enforce
// abstraction:
//
//	embedder, err := openai.NewEmbedder(config)  // returns ai.Embedder
//
// The mock constructor returns the concrete *mock.MockEmbedder so tests can
// inject behavior and assert on call counts.
package ai
