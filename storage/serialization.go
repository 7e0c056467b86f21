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


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/hnjobs/core"
)

// Records are serialized with MUS primitives. The embedding vector is encoded
// as an element count followed by little-endian float32 values; times are
// encoded as a presence flag followed by unix microseconds.

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	return core.ID(id), nil
}

// MarshalPosting serializes a Posting to bytes.
func MarshalPosting(posting *core.Posting) []byte {
	buf := make([]byte, sizePosting(posting))
	n := varint.Uint64.Marshal(uint64(posting.Id), buf)
	n += varint.Int64.Marshal(posting.ExternalId, buf[n:])
	n += ord.String.Marshal(posting.Author, buf[n:])
	n += ord.String.Marshal(posting.Text, buf[n:])
	n += marshalVector(posting.Vector, buf[n:])
	n += marshalTime(posting.InsertedAt, buf[n:])
	n += marshalTime(posting.UpdatedAt, buf[n:])
	n += marshalTime(posting.AppliedAt, buf[n:])
	ord.String.Marshal(posting.Status, buf[n:])
	return buf
}

// UnmarshalPosting deserializes a Posting from bytes.
func UnmarshalPosting(data []byte) (*core.Posting, error) {
	posting := &core.Posting{}
	n := 0

	id, c, err := varint.Uint64.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	posting.Id = core.ID(id)
	n += c

	posting.ExternalId, c, err = varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: external id: %w", ErrSerializationFailed, err)
	}
	n += c

	posting.Author, c, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: author: %w", ErrSerializationFailed, err)
	}
	n += c

	posting.Text, c, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: text: %w", ErrSerializationFailed, err)
	}
	n += c

	posting.Vector, c, err = unmarshalVector(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: vector: %w", ErrSerializationFailed, err)
	}
	n += c

	posting.InsertedAt, c, err = unmarshalTime(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: inserted at: %w", ErrSerializationFailed, err)
	}
	n += c

	posting.UpdatedAt, c, err = unmarshalTime(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: updated at: %w", ErrSerializationFailed, err)
	}
	n += c

	posting.AppliedAt, c, err = unmarshalTime(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: applied at: %w", ErrSerializationFailed, err)
	}
	n += c

	posting.Status, _, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: status: %w", ErrSerializationFailed, err)
	}

	return posting, nil
}

// MarshalCheckpoint serializes a Checkpoint to bytes.
func MarshalCheckpoint(checkpoint *core.Checkpoint) []byte {
	buf := make([]byte, sizeCheckpoint(checkpoint))
	n := ord.String.Marshal(checkpoint.Name, buf)
	n += varint.Uint64.Marshal(uint64(checkpoint.LastId), buf[n:])
	marshalTime(checkpoint.UpdatedAt, buf[n:])
	return buf
}

// UnmarshalCheckpoint deserializes a Checkpoint from bytes.
func UnmarshalCheckpoint(data []byte) (*core.Checkpoint, error) {
	checkpoint := &core.Checkpoint{}
	n := 0

	name, c, err := ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: checkpoint name: %w", ErrSerializationFailed, err)
	}
	checkpoint.Name = name
	n += c

	last, c, err := varint.Uint64.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: checkpoint last id: %w", ErrSerializationFailed, err)
	}
	checkpoint.LastId = core.ID(last)
	n += c

	checkpoint.UpdatedAt, _, err = unmarshalTime(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: checkpoint updated at: %w", ErrSerializationFailed, err)
	}

	return checkpoint, nil
}

func sizePosting(posting *core.Posting) int {
	size := varint.Uint64.Size(uint64(posting.Id))
	size += varint.Int64.Size(posting.ExternalId)
	size += ord.String.Size(posting.Author)
	size += ord.String.Size(posting.Text)
	size += sizeVector(posting.Vector)
	size += sizeTime(posting.InsertedAt)
	size += sizeTime(posting.UpdatedAt)
	size += sizeTime(posting.AppliedAt)
	size += ord.String.Size(posting.Status)
	return size
}

func sizeCheckpoint(checkpoint *core.Checkpoint) int {
	size := ord.String.Size(checkpoint.Name)
	size += varint.Uint64.Size(uint64(checkpoint.LastId))
	size += sizeTime(checkpoint.UpdatedAt)
	return size
}

func sizeVector(vector []float32) int {
	size := varint.Int.Size(len(vector))
	for _, v := range vector {
		size += raw.Float32.Size(v)
	}
	return size
}

func marshalVector(vector []float32, buf []byte) int {
	n := varint.Int.Marshal(len(vector), buf)
	for _, v := range vector {
		n += raw.Float32.Marshal(v, buf[n:])
	}
	return n
}

func unmarshalVector(data []byte) ([]float32, int, error) {
	count, n, err := varint.Int.Unmarshal(data)
	if err != nil {
		return nil, n, err
	}
	if count < 0 {
		return nil, n, fmt.Errorf("negative vector length %d", count)
	}
	if count == 0 {
		return nil, n, nil
	}
	vector := make([]float32, count)
	for i := 0; i < count; i++ {
		v, c, err := raw.Float32.Unmarshal(data[n:])
		if err != nil {
			return nil, n, err
		}
		vector[i] = v
		n += c
	}
	return vector, n, nil
}

func sizeTime(t time.Time) int {
	size := ord.Bool.Size(!t.IsZero())
	if !t.IsZero() {
		size += raw.Int64.Size(t.UnixMicro())
	}
	return size
}

func marshalTime(t time.Time, buf []byte) int {
	n := ord.Bool.Marshal(!t.IsZero(), buf)
	if !t.IsZero() {
		n += raw.Int64.Marshal(t.UnixMicro(), buf[n:])
	}
	return n
}

func unmarshalTime(data []byte) (time.Time, int, error) {
	present, n, err := ord.Bool.Unmarshal(data)
	if err != nil || !present {
		return time.Time{}, n, err
	}
	micros, c, err := raw.Int64.Unmarshal(data[n:])
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n + c, nil
}
