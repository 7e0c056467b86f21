package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePosting(t *testing.T) {
	t.Run("valid posting", func(t *testing.T) {
		posting := &Posting{
			ExternalId: 43555555,
			Author:     "someuser",
			Text:       "<p>Acme Corp | Remote | Senior Gopher</p>",
		}
		require.NoError(t, ValidatePosting(posting))
	})

	t.Run("nil posting", func(t *testing.T) {
		err := ValidatePosting(nil)
		assert.ErrorIs(t, err, ErrInvalidPosting)
	})

	t.Run("empty text", func(t *testing.T) {
		err := ValidatePosting(&Posting{ExternalId: 1})
		assert.ErrorIs(t, err, ErrInvalidPosting)
		assert.ErrorIs(t, err, ErrEmptyText)
	})

	t.Run("missing external id", func(t *testing.T) {
		err := ValidatePosting(&Posting{Text: "hiring"})
		assert.ErrorIs(t, err, ErrMissingExternalId)
	})
}

func TestPersistableRaw(t *testing.T) {
	assert.True(t, PersistableRaw(&RawPosting{Text: "hiring", ExternalId: 42}))
	assert.False(t, PersistableRaw(&RawPosting{Text: "hiring"}))
	assert.False(t, PersistableRaw(&RawPosting{ExternalId: 42}))
	assert.False(t, PersistableRaw(nil))
}

func TestPostingPredicates(t *testing.T) {
	p := &Posting{}
	assert.False(t, p.HasExternalId())
	assert.False(t, p.Embedded())

	p.ExternalId = 7
	p.Vector = []float32{0.1, 0.2}
	assert.True(t, p.HasExternalId())
	assert.True(t, p.Embedded())
}
