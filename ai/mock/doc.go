// Package mock provides a deterministic ai.Embedder test double.
// The default behavior derives a fixed-dimension vector from an FNV hash of
// the input text, so identical text always embeds identically within a test.
package mock
