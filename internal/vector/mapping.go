// Package vector holds the document vector mapping, pooling, similarity and top-k selection.
package vector

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/hyperjump/emnet/internal/errs"
)

const (
	mappingMagic   = "EMNV"
	mappingVersion = uint32(1)
	// maxIDLen bounds a single identifier on decode so a corrupt length cannot allocate gigabytes.
	maxIDLen = 1 << 16
)

// Mapping is an insertion-ordered map from document identifier to document vector.
// Iteration (IDs, Entries) always follows insertion order. A Mapping is not safe for
// concurrent mutation; the search path loads a fresh one per query.
type Mapping struct {
	dimensions int
	ids        []string
	vectors    [][]float32
	pos        map[string]int
}

// NewMapping creates an empty mapping. When dimensions is 0 it is fixed by the first Set.
func NewMapping(dimensions int) *Mapping {
	return &Mapping{
		dimensions: dimensions,
		ids:        make([]string, 0),
		vectors:    make([][]float32, 0),
		pos:        make(map[string]int),
	}
}

// Set stores a copy of vec under id. A new id is appended; an existing id keeps its position.
func (m *Mapping) Set(id string, vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("%w: empty vector for %s", errs.ErrInvalidInput, id)
	}
	if m.dimensions == 0 {
		m.dimensions = len(vec)
	}
	if len(vec) != m.dimensions {
		return fmt.Errorf("%w: vector dimension mismatch for %s: got %d, expected %d",
			errs.ErrInvalidInput, id, len(vec), m.dimensions)
	}
	cp := make([]float32, len(vec))
	copy(cp, vec)
	if i, ok := m.pos[id]; ok {
		m.vectors[i] = cp
		return nil
	}
	m.pos[id] = len(m.ids)
	m.ids = append(m.ids, id)
	m.vectors = append(m.vectors, cp)
	return nil
}

// Get returns the vector stored under id.
func (m *Mapping) Get(id string) ([]float32, bool) {
	i, ok := m.pos[id]
	if !ok {
		return nil, false
	}
	return m.vectors[i], true
}

// Has reports whether id is present.
func (m *Mapping) Has(id string) bool {
	_, ok := m.pos[id]
	return ok
}

// IDs returns the identifiers in insertion order.
func (m *Mapping) IDs() []string {
	return append([]string(nil), m.ids...)
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	return len(m.ids)
}

// Dimensions returns the vector dimension, or 0 for an empty mapping created without one.
func (m *Mapping) Dimensions() int {
	return m.dimensions
}

// Merge copies every entry of other into m. Entries of other win on conflict.
func (m *Mapping) Merge(other *Mapping) error {
	for i, id := range other.ids {
		if err := m.Set(id, other.vectors[i]); err != nil {
			return err
		}
	}
	return nil
}

// Entries returns ids and vectors in insertion order, skipping the ids in exclude.
// The returned vectors alias the mapping's storage and must not be modified.
func (m *Mapping) Entries(exclude ...string) ([]string, [][]float32) {
	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	ids := make([]string, 0, len(m.ids))
	vectors := make([][]float32, 0, len(m.vectors))
	for i, id := range m.ids {
		if _, ok := skip[id]; ok {
			continue
		}
		ids = append(ids, id)
		vectors = append(vectors, m.vectors[i])
	}
	return ids, vectors
}

// Encode writes the mapping in binary form: magic (4), version (4), dimension (4), n (4),
// then per entry: idLen (4), id bytes, vector (dimension*4 bytes). Integers are little endian.
func (m *Mapping) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(mappingMagic); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	header := []uint32{mappingVersion, uint32(m.dimensions), uint32(len(m.ids))}
	if err := binary.Write(bw, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, id := range m.ids {
		idBytes := []byte(id)
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(idBytes))); err != nil {
			return fmt.Errorf("write id len: %w", err)
		}
		if _, err := bw.Write(idBytes); err != nil {
			return fmt.Errorf("write id: %w", err)
		}
		if _, err := bw.Write(float32SliceToBytes(m.vectors[i])); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return bw.Flush()
}

// DecodeMapping reads a mapping written by Encode. Truncated or malformed input
// yields an error matching errs.ErrStorageRead.
func DecodeMapping(r io.Reader) (*Mapping, error) {
	br := bufio.NewReader(r)
	magic := make([]byte, len(mappingMagic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, fmt.Errorf("%w: read magic: %w", errs.ErrStorageRead, err)
	}
	if string(magic) != mappingMagic {
		return nil, fmt.Errorf("%w: bad magic %q", errs.ErrStorageRead, magic)
	}
	var header [3]uint32
	if err := binary.Read(br, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: read header: %w", errs.ErrStorageRead, err)
	}
	version, dim, n := header[0], header[1], header[2]
	if version != mappingVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", errs.ErrStorageRead, version)
	}
	if n > 0 && dim == 0 {
		return nil, fmt.Errorf("%w: zero dimension with %d entries", errs.ErrStorageRead, n)
	}
	m := NewMapping(int(dim))
	buf := make([]byte, int(dim)*4)
	for i := uint32(0); i < n; i++ {
		var idLen uint32
		if err := binary.Read(br, binary.LittleEndian, &idLen); err != nil {
			return nil, fmt.Errorf("%w: read id len: %w", errs.ErrStorageRead, err)
		}
		if idLen == 0 || idLen > maxIDLen {
			return nil, fmt.Errorf("%w: invalid id length %d", errs.ErrStorageRead, idLen)
		}
		idBytes := make([]byte, idLen)
		if _, err := io.ReadFull(br, idBytes); err != nil {
			return nil, fmt.Errorf("%w: read id: %w", errs.ErrStorageRead, err)
		}
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("%w: read vector: %w", errs.ErrStorageRead, err)
		}
		id := string(idBytes)
		if m.Has(id) {
			return nil, fmt.Errorf("%w: duplicate id %s", errs.ErrStorageRead, id)
		}
		if err := m.Set(id, bytesToFloat32Slice(buf)); err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrStorageRead, err)
		}
	}
	return m, nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
