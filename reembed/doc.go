// Package reembed regenerates stored posting embeddings with a new or
// updated embedding model.
//
// This package supports batch processing of postings, progress tracking,
// retry logic with exponential backoff, and checkpointed resume so an
// interrupted run picks up where it stopped.
package reembed
