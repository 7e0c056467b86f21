// Package openai implements the ai.Embedder interface on top of
// OpenAI-compatible embedding APIs via langchaingo. It works against local
// services (Ollama, LocalAI, vLLM) as well as the hosted OpenAI endpoint.
package openai
