package leveldb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"

	"dropzone/internal/domain"

	ds "github.com/ipfs/go-datastore"
	dsq "github.com/ipfs/go-datastore/query"
	dslvl "github.com/ipfs/go-ds-leveldb"
)

// Key namespaces, one per collection
var (
	foldersKey  = ds.NewKey("/folders")
	filesKey    = ds.NewKey("/files")
	sessionsKey = ds.NewKey("/sessions")
)

// record wraps a stored value with its insertion sequence so List can return
// insertion order regardless of key order
type record[T any] struct {
	Seq   int64 `json:"seq"`
	Value T     `json:"value"`
}

// readWriter is satisfied by both the datastore and an open transaction
type readWriter interface {
	ds.Read
	ds.Write
}

type txContextKey struct{}

// Store is a LevelDB-backed datastore holding every drive collection
type Store struct {
	ds  *dslvl.Datastore
	seq atomic.Int64
}

// Open opens (or creates) the datastore at path
func Open(ctx context.Context, path string) (*Store, error) {
	store, err := dslvl.NewDatastore(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}

	s := &Store{ds: store}
	if err := s.loadSeq(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying datastore
func (s *Store) Close() error {
	return s.ds.Close()
}

// loadSeq resumes the sequence after the highest stored record
func (s *Store) loadSeq(ctx context.Context) error {
	var max int64
	for _, prefix := range []ds.Key{foldersKey, filesKey, sessionsKey} {
		records, err := list[json.RawMessage](ctx, s.ds, prefix)
		if err != nil {
			return err
		}
		for _, r := range records {
			if r.Seq > max {
				max = r.Seq
			}
		}
	}
	s.seq.Store(max)
	return nil
}

func (s *Store) nextSeq() int64 {
	return s.seq.Add(1)
}

// rw returns the transaction carried by ctx, or the datastore itself
func (s *Store) rw(ctx context.Context) readWriter {
	if txn, ok := ctx.Value(txContextKey{}).(ds.Txn); ok {
		return txn
	}
	return s.ds
}

func get[T any](ctx context.Context, r ds.Read, key ds.Key) (*record[T], error) {
	b, err := r.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ds.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var rec record[T]
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &rec, nil
}

func put[T any](ctx context.Context, w ds.Write, key ds.Key, rec record[T]) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return w.Put(ctx, key, b)
}

// list returns every record under prefix in insertion order
func list[T any](ctx context.Context, r ds.Read, prefix ds.Key) ([]record[T], error) {
	res, err := r.Query(ctx, dsq.Query{Prefix: prefix.String()})
	if err != nil {
		return nil, err
	}
	defer res.Close()

	records := make([]record[T], 0)
	for {
		entry, hasNext := res.NextSync()
		if !hasNext {
			break
		}
		if entry.Error != nil {
			return nil, entry.Error
		}

		var rec record[T]
		if err := json.Unmarshal(entry.Value, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", entry.Key, err)
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Seq < records[j].Seq
	})
	return records, nil
}

// deleteAll removes every key under prefix
func deleteAll(ctx context.Context, rw readWriter, prefix ds.Key) error {
	res, err := rw.Query(ctx, dsq.Query{Prefix: prefix.String(), KeysOnly: true})
	if err != nil {
		return err
	}
	entries, err := res.Rest()
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := rw.Delete(ctx, ds.NewKey(entry.Key)); err != nil {
			return err
		}
	}
	return nil
}
