package storage

import (
	"testing"
	"time"

	"github.com/poiesic/hnjobs/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostingRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	posting := &core.Posting{
		Id:         42,
		ExternalId: 43547611,
		Author:     "alice",
		Text:       "<p>Acme | Remote | Senior Gopher &amp; friends</p>",
		Vector:     []float32{0.25, -1.5, 3.75},
		InsertedAt: now,
		UpdatedAt:  now.Add(time.Hour),
		AppliedAt:  now.Add(2 * time.Hour),
		Status:     "applied",
	}

	decoded, err := UnmarshalPosting(MarshalPosting(posting))
	require.NoError(t, err)
	assert.Equal(t, posting, decoded)
}

func TestPostingRoundTrip_FreshInsert(t *testing.T) {
	// A posting as staged at first ingestion: no vector metadata history,
	// zero UpdatedAt/AppliedAt, unset status.
	posting := &core.Posting{
		Id:         1,
		ExternalId: 111,
		Author:     "bob",
		Text:       "hiring",
		Vector:     []float32{1, 2},
		InsertedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	decoded, err := UnmarshalPosting(MarshalPosting(posting))
	require.NoError(t, err)
	assert.Equal(t, posting, decoded)
	assert.True(t, decoded.UpdatedAt.IsZero())
	assert.True(t, decoded.AppliedAt.IsZero())
	assert.Empty(t, decoded.Status)
}

func TestPostingRoundTrip_NilVector(t *testing.T) {
	posting := &core.Posting{
		Id:         2,
		ExternalId: 222,
		Text:       "not yet embedded",
		InsertedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	decoded, err := UnmarshalPosting(MarshalPosting(posting))
	require.NoError(t, err)
	assert.Nil(t, decoded.Vector)
	assert.False(t, decoded.Embedded())
}

func TestUnmarshalPosting_Truncated(t *testing.T) {
	data := MarshalPosting(&core.Posting{
		Id:         3,
		ExternalId: 333,
		Text:       "truncate me",
		InsertedAt: time.Now().UTC(),
	})

	_, err := UnmarshalPosting(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestIDRoundTrip(t *testing.T) {
	id, err := UnmarshalID(MarshalID(core.ID(987654321)))
	require.NoError(t, err)
	assert.Equal(t, core.ID(987654321), id)
}

func TestCheckpointRoundTrip(t *testing.T) {
	checkpoint := &core.Checkpoint{
		Name:      "reembed",
		LastId:    77,
		UpdatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	decoded, err := UnmarshalCheckpoint(MarshalCheckpoint(checkpoint))
	require.NoError(t, err)
	assert.Equal(t, checkpoint, decoded)
}
