package badger

import (
	"fmt"

	"github.com/poiesic/hnjobs/core"
)

// Key prefixes for different data types
const (
	postingPrefix    = "jobrec:"
	externalIdPrefix = "jobext:"
	postingIDSeq     = "jobseq"
	checkpointPrefix = "chkpt:"
)

// makePostingKey generates a key for a posting by ID.
func makePostingKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s%d", postingPrefix, id))
}

// makeExternalIdKey generates a key for the external-id uniqueness index.
// The value stored under it is the marshalled internal ID.
func makeExternalIdKey(externalId int64) []byte {
	return []byte(fmt.Sprintf("%s%d", externalIdPrefix, externalId))
}

// makeCheckpointKey generates a key for a named processing checkpoint.
func makeCheckpointKey(name string) []byte {
	return []byte(checkpointPrefix + name)
}
