package core

import "time"

// ID is the surrogate key for persisted postings.
// It is assigned from a database sequence and stable for the posting's lifetime.
type ID uint64

// Posting represents a single job posting extracted from a hiring thread.
// It may be enriched with an embedding vector during ingestion.
type Posting struct {
	Id         ID
	ExternalId int64     // HN item id; 0 means absent, unique otherwise
	Author     string    // HN handle of the poster, may be empty
	Text       string    // raw comment markup, entities not decoded
	Vector     []float32 // embedding of the decoded text; nil until embedded
	InsertedAt time.Time // set once, at first persistence
	UpdatedAt  time.Time // zero until the first content update
	AppliedAt  time.Time // application tracking, owned by collaborators
	Status     string    // application tracking, owned by collaborators
}

// HasExternalId reports whether the posting carries a source identifier.
// Postings without one cannot be deduplicated and are never persisted.
func (p *Posting) HasExternalId() bool {
	return p.ExternalId != 0
}

// Embedded reports whether the posting carries an embedding vector.
func (p *Posting) Embedded() bool {
	return len(p.Vector) > 0
}

// RawPosting is a posting candidate as emitted by the extractor,
// before deduplication and embedding.
type RawPosting struct {
	Text       string
	Author     string
	ExternalId int64 // 0 when the entry has no recoverable identifier
}

// Checkpoint records batch processing progress so an interrupted
// run can resume where it left off.
type Checkpoint struct {
	Name      string
	LastId    ID
	UpdatedAt time.Time
}
