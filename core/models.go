package core

import (
	"sort"
	"strings"
	"time"
)

// Embedding is a fixed-length face descriptor produced by the extraction
// model. The length is fixed per deployment (128 for Facenet, 512 for
// Facenet512). An embedding is immutable once produced.
type Embedding []float64

// Clone returns an independent copy of the embedding.
func (e Embedding) Clone() Embedding {
	if e == nil {
		return nil
	}
	out := make(Embedding, len(e))
	copy(out, e)
	return out
}

// EmployeeRecord holds one employee's reference embedding.
// An organization has at most one record per employee id.
type EmployeeRecord struct {
	EmployeeID   string
	Embedding    Embedding
	RegisteredAt time.Time
}

// Collection maps canonical employee ids to their records for one
// organization. Collections from different organizations are never mixed.
type Collection map[string]*EmployeeRecord

// NewCollection creates an empty collection.
func NewCollection() Collection {
	return make(Collection)
}

// Clone returns a deep copy of the collection. Cached collections are
// treated as immutable snapshots; writers must clone before mutating.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for id, rec := range c {
		out[id] = &EmployeeRecord{
			EmployeeID:   rec.EmployeeID,
			Embedding:    rec.Embedding.Clone(),
			RegisteredAt: rec.RegisteredAt,
		}
	}
	return out
}

// IDs returns the employee ids in lexicographic order. This is the
// collection's stable iteration order: search and serialization both walk
// ids in this order so that ties and on-disk bytes are reproducible.
func (c Collection) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered employees.
func (c Collection) Len() int {
	return len(c)
}

// CanonicalID normalizes an organization or employee id to its
// canonical string form. Normalization happens exactly once, at the
// workflow boundary, so lookups never need to try multiple key shapes.
func CanonicalID(id string) string {
	return strings.TrimSpace(id)
}
