package core

import (
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the domain types. These are hand-written rather than
// generated: collections must serialize in sorted employee-id order so that
// identical collections produce identical bytes, and map serializers cannot
// guarantee that.

// EmbeddingMUS serializes an embedding as a length-prefixed sequence of
// raw float64 components. Fixed-width encoding keeps the round-trip
// bit-exact.
var EmbeddingMUS = embeddingSer{}

type embeddingSer struct{}

var _ mus.Serializer[Embedding] = embeddingSer{}

var float64Slice = ord.NewSliceSer[float64](raw.Float64)

func (embeddingSer) Marshal(e Embedding, bs []byte) (n int) {
	return float64Slice.Marshal(e, bs)
}

func (embeddingSer) Unmarshal(bs []byte) (e Embedding, n int, err error) {
	var vals []float64
	vals, n, err = float64Slice.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	return Embedding(vals), n, nil
}

func (embeddingSer) Size(e Embedding) (size int) {
	return float64Slice.Size(e)
}

func (embeddingSer) Skip(bs []byte) (n int, err error) {
	return float64Slice.Skip(bs)
}

// EmployeeRecordMUS serializes an EmployeeRecord. RegisteredAt is stored
// as Unix microseconds in UTC.
var EmployeeRecordMUS = employeeRecordSer{}

type employeeRecordSer struct{}

var _ mus.Serializer[EmployeeRecord] = employeeRecordSer{}

func (employeeRecordSer) Marshal(r EmployeeRecord, bs []byte) (n int) {
	n = ord.String.Marshal(r.EmployeeID, bs)
	n += EmbeddingMUS.Marshal(r.Embedding, bs[n:])
	n += varint.Int64.Marshal(r.RegisteredAt.UTC().UnixMicro(), bs[n:])
	return n
}

func (employeeRecordSer) Unmarshal(bs []byte) (r EmployeeRecord, n int, err error) {
	var n1 int
	r.EmployeeID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return r, n, err
	}
	r.Embedding, n1, err = EmbeddingMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return r, n, err
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return r, n, err
	}
	r.RegisteredAt = time.UnixMicro(micros).UTC()
	return r, n, nil
}

func (employeeRecordSer) Size(r EmployeeRecord) (size int) {
	size = ord.String.Size(r.EmployeeID)
	size += EmbeddingMUS.Size(r.Embedding)
	size += varint.Int64.Size(r.RegisteredAt.UTC().UnixMicro())
	return size
}

func (employeeRecordSer) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return n, err
	}
	var n1 int
	n1, err = EmbeddingMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return n, err
	}
	n1, err = varint.Int64.Skip(bs[n:])
	return n + n1, err
}

// CollectionMUS serializes a Collection as a count followed by records in
// lexicographic employee-id order.
var CollectionMUS = collectionSer{}

type collectionSer struct{}

var _ mus.Serializer[Collection] = collectionSer{}

func (collectionSer) Marshal(c Collection, bs []byte) (n int) {
	n = varint.Int.Marshal(len(c), bs)
	for _, id := range c.IDs() {
		n += EmployeeRecordMUS.Marshal(*c[id], bs[n:])
	}
	return n
}

func (collectionSer) Unmarshal(bs []byte) (c Collection, n int, err error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	c = make(Collection, count)
	for i := 0; i < count; i++ {
		var (
			rec EmployeeRecord
			n1  int
		)
		rec, n1, err = EmployeeRecordMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		r := rec
		c[r.EmployeeID] = &r
	}
	return c, n, nil
}

func (collectionSer) Size(c Collection) (size int) {
	size = varint.Int.Size(len(c))
	for _, rec := range c {
		size += EmployeeRecordMUS.Size(*rec)
	}
	return size
}

func (collectionSer) Skip(bs []byte) (n int, err error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return n, err
	}
	for i := 0; i < count; i++ {
		var n1 int
		n1, err = EmployeeRecordMUS.Skip(bs[n:])
		n += n1
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// LegacyCollectionMUS decodes the original on-disk shape: a bare mapping
// from employee id to vector, with no registration metadata. It exists
// only so old artifacts remain readable; new artifacts are always written
// through CollectionMUS. Loaded records get a zero RegisteredAt.
var LegacyCollectionMUS = legacyCollectionSer{}

type legacyCollectionSer struct{}

var _ mus.Serializer[Collection] = legacyCollectionSer{}

func (legacyCollectionSer) Marshal(c Collection, bs []byte) (n int) {
	n = varint.Int.Marshal(len(c), bs)
	for _, id := range c.IDs() {
		n += ord.String.Marshal(id, bs[n:])
		n += EmbeddingMUS.Marshal(c[id].Embedding, bs[n:])
	}
	return n
}

func (legacyCollectionSer) Unmarshal(bs []byte) (c Collection, n int, err error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	c = make(Collection, count)
	for i := 0; i < count; i++ {
		var (
			id string
			e  Embedding
			n1 int
		)
		id, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		e, n1, err = EmbeddingMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		c[id] = &EmployeeRecord{EmployeeID: id, Embedding: e}
	}
	return c, n, nil
}

func (legacyCollectionSer) Size(c Collection) (size int) {
	size = varint.Int.Size(len(c))
	for id, rec := range c {
		size += ord.String.Size(id)
		size += EmbeddingMUS.Size(rec.Embedding)
	}
	return size
}

func (legacyCollectionSer) Skip(bs []byte) (n int, err error) {
	cnt, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return n, err
	}
	for i := 0; i < cnt; i++ {
		var n1 int
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return n, err
		}
		n1, err = EmbeddingMUS.Skip(bs[n:])
		n += n1
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
