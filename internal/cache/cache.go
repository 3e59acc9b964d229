// Package cache is the purity/call-graph cache: a badger-backed key-value
// store that lets a second run on an unchanged file skip re-deriving purity
// and call-graph extraction results. Invalidation is conservative
// clear-all, never fine-grained dependency tracking, so a stale entry
// never survives into a result.
package cache

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

const (
	keyPrefixPurity    = "purity:"
	keyPrefixCallGraph = "callgraph:"
	keySchemaVersion   = "schema:version"
)

// schemaVersion is bumped whenever the shape of PurityEntry or
// CallGraphEntry changes incompatibly; Open forces a clear-all when the
// stored version does not match, so a binary upgrade never has to reason
// about partially-compatible cache entries.
const schemaVersion = "1"

// PurityEntry is the cached result for one function's purity
// classification, keyed by its FunctionId.
type PurityEntry struct {
	Result     model.PurityLevel `json:"result"`
	SourceHash string            `json:"source_hash"`
	DepsHash   string            `json:"deps_hash"`
	FileMtime  int64             `json:"file_mtime"`
}

// CallGraphEntry is the cached extraction result for one source tree,
// keyed by a content hash of its file set.
type CallGraphEntry struct {
	SerializedGraph     []byte   `json:"serialized_graph"`
	FrameworkExclusions []string `json:"framework_exclusions"`
	FunctionPointerUsed bool     `json:"function_pointer_used"`
	TimestampUnixMilli  int64    `json:"timestamp_unix_milli"`
	SourceFiles         []string `json:"source_files"`
}

// Store wraps an opened badger.DB with the two cache kinds this package
// serves. The caller owns the DB's lifecycle (open before constructing a
// Store, close after).
type Store struct {
	db *badger.DB
}

// Open opens (creating if absent) a badger database at dir. A schema
// mismatch against the previously stored version triggers ClearAll before
// the new version is recorded, so callers never need their own migration
// path.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening cache at %s: %w", dir, err)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	var stored string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keySchemaVersion))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			stored = string(val)
			return nil
		})
	})
	if err == nil && stored == schemaVersion {
		return nil
	}
	if err != nil && err != badger.ErrKeyNotFound {
		return fmt.Errorf("reading cache schema version: %w", err)
	}
	if err := s.ClearAll(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keySchemaVersion), []byte(schemaVersion))
	})
}

// Close releases the underlying badger database.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetPurity returns the cached PurityEntry for id, if present and its
// SourceHash/DepsHash still match what the caller observes now. A miss
// (not found, or a stale hash) returns ok=false; the caller recomputes.
func (s *Store) GetPurity(id model.FunctionId, sourceHash, depsHash string) (PurityEntry, bool) {
	var entry PurityEntry
	found := false
	_ = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(purityKey(id))
		if err != nil {
			return nil
		}
		return item.Value(func(val []byte) error {
			if jsonErr := json.Unmarshal(val, &entry); jsonErr != nil {
				return nil
			}
			found = true
			return nil
		})
	})
	if !found || entry.SourceHash != sourceHash || entry.DepsHash != depsHash {
		return PurityEntry{}, false
	}
	return entry, true
}

// PutPurity stores a purity classification for id.
func (s *Store) PutPurity(id model.FunctionId, entry PurityEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling purity cache entry: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(purityKey(id), data)
	})
}

// GetCallGraph returns the cached extraction result for contentHash, if
// present.
func (s *Store) GetCallGraph(contentHash string) (CallGraphEntry, bool) {
	var entry CallGraphEntry
	found := false
	_ = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(callGraphKey(contentHash))
		if err != nil {
			return nil
		}
		return item.Value(func(val []byte) error {
			if jsonErr := json.Unmarshal(val, &entry); jsonErr != nil {
				return nil
			}
			found = true
			return nil
		})
	})
	return entry, found
}

// PutCallGraph stores an extraction result keyed by contentHash.
func (s *Store) PutCallGraph(contentHash string, entry CallGraphEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling call graph cache entry: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(callGraphKey(contentHash), data)
	})
}

// ClearAll drops every key this package owns. This is the only
// invalidation strategy the cache supports: any doubt about staleness is
// resolved by wiping everything rather than tracking fine-grained
// dependencies.
func (s *Store) ClearAll() error {
	return s.db.DropPrefix([]byte(keyPrefixPurity), []byte(keyPrefixCallGraph))
}

func purityKey(id model.FunctionId) []byte {
	return []byte(keyPrefixPurity + id.String())
}

func callGraphKey(contentHash string) []byte {
	return []byte(keyPrefixCallGraph + contentHash)
}
