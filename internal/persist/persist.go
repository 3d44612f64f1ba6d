package persist

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/gitnexus/gitnexus/internal/csvbuild"
	"github.com/gitnexus/gitnexus/internal/types"
)

// Store wraps an embedded Badger database standing in for the property-
// graph engine. Write transactions are strictly serial; reads may run
// concurrently.
type Store struct {
	db *badger.DB
	mu sync.RWMutex
}

// Open creates or reopens the embedded database at dir (the
// `.gitnexus/kuzu/` directory).
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).
		WithNumCompactors(2).
		WithNumMemtables(5).
		WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening embedded store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// SchemaWarning records a relation pair the closed schema does not declare;
// the pair's edges are still loaded through the normal batch.
type SchemaWarning struct {
	From  types.NodeLabel
	To    types.NodeLabel
	Count int
}

// Report summarizes one BulkLoad call.
type Report struct {
	NodesLoaded       int
	NodeFallbacks     int
	RelationsLoaded   int
	RelationFallbacks int
	SchemaWarnings    []SchemaWarning
}

func nodeKey(id string) []byte { return []byte(prefixNode + id) }

func relationKey(from, to string, typ types.RelationType) []byte {
	return []byte(prefixRelation + from + ":" + string(typ) + ":" + to)
}

func outKey(from, to string, typ types.RelationType) []byte {
	return []byte(prefixOut + from + ":" + string(typ) + ":" + to)
}

func inKey(from, to string, typ types.RelationType) []byte {
	return []byte(prefixIn + to + ":" + string(typ) + ":" + from)
}

// BulkLoad reads the node CSVs under nodesDir (one per label, as produced
// by csvbuild.Builder.WriteNodes) and the pair CSVs under pairsDir (as
// produced by csvbuild.SplitRelationsByPair), loading both via a
// COPY-equivalent WriteBatch per file. On a batch failure it retries with
// per-row inserts so a valid node or edge is never silently dropped
//.
func (s *Store) BulkLoad(ctx context.Context, nodesDir, pairsDir string) (Report, error) {
	var report Report

	nodeFiles, err := filepath.Glob(filepath.Join(nodesDir, "*.csv"))
	if err != nil {
		return report, fmt.Errorf("listing node CSVs: %w", err)
	}
	for _, path := range nodeFiles {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		// relations.csv and CodeEmbedding.csv live alongside the node CSVs
		// but load through their own paths (pair split, LoadEmbeddings).
		switch filepath.Base(path) {
		case "relations.csv", "CodeEmbedding.csv":
			continue
		}
		loaded, fallbacks, err := s.loadNodeFile(path)
		report.NodesLoaded += loaded
		report.NodeFallbacks += fallbacks
		if err != nil {
			return report, fmt.Errorf("loading %s: %w", filepath.Base(path), err)
		}
	}

	pairFiles, err := filepath.Glob(filepath.Join(pairsDir, "*.csv"))
	if err != nil {
		return report, fmt.Errorf("listing relation pair CSVs: %w", err)
	}
	for _, path := range pairFiles {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		loaded, fallbacks, warning, err := s.loadRelationPairFile(path)
		report.RelationsLoaded += loaded
		report.RelationFallbacks += fallbacks
		if warning != nil {
			report.SchemaWarnings = append(report.SchemaWarnings, *warning)
		}
		if err != nil {
			return report, fmt.Errorf("loading %s: %w", filepath.Base(path), err)
		}
	}

	return report, nil
}

// readRows streams a csvbuild-produced CSV, returning the header and every
// data row parsed by csvbuild.ParseRow.
func readRows(path string) (header []string, rows [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	first := true
	for scanner.Scan() {
		fields := csvbuild.ParseRow(scanner.Text())
		if first {
			header = fields
			first = false
			continue
		}
		rows = append(rows, fields)
	}
	return header, rows, scanner.Err()
}

func (s *Store) loadNodeFile(path string) (loaded, fallbacks int, err error) {
	header, rows, err := readRows(path)
	if err != nil {
		return 0, 0, err
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}

	encoded := make([][]byte, len(rows))
	keys := make([][]byte, len(rows))
	for i, row := range rows {
		rec := rowToRecord(header, row)
		data, err := json.Marshal(rec)
		if err != nil {
			return loaded, fallbacks, fmt.Errorf("encoding row %d: %w", i, err)
		}
		keys[i] = nodeKey(rec["id"])
		encoded[i] = data
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wb := s.db.NewWriteBatch()
	batchErr := func() error {
		for i := range keys {
			if err := wb.Set(keys[i], encoded[i]); err != nil {
				return err
			}
		}
		return wb.Flush()
	}()
	if batchErr == nil {
		return len(rows), 0, nil
	}
	wb.Cancel()

	// Per-row fallback: a bad batch never drops a valid node.
	for i := range keys {
		if err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Set(keys[i], encoded[i])
		}); err != nil {
			return loaded, fallbacks, fmt.Errorf("fallback insert row %d: %w", i, err)
		}
		loaded++
		fallbacks++
	}
	return loaded, fallbacks, nil
}

func rowToRecord(header, row []string) map[string]string {
	rec := make(map[string]string, len(header))
	for i, col := range header {
		if i < len(row) {
			rec[col] = row[i]
		}
	}
	return rec
}

// loadRelationPairFile loads one rel_<FromLabel>__<ToLabel>.csv file. It
// classifies the pair against the schema once per file; a SchemaWarning
// never blocks the load, the edges are still inserted.
func (s *Store) loadRelationPairFile(path string) (loaded, fallbacks int, warning *SchemaWarning, err error) {
	from, to, ok := pairLabelsFromFilename(filepath.Base(path))
	if ok && !PairPermitted(from, to) {
		warning = &SchemaWarning{From: from, To: to}
	}

	header, rows, err := readRows(path)
	if err != nil {
		return 0, 0, warning, err
	}
	if len(rows) == 0 {
		return 0, 0, warning, nil
	}
	if warning != nil {
		warning.Count = len(rows)
	}

	type encodedRel struct {
		key, outIdx, inIdx []byte
		val                []byte
		from, to           string
		typ                types.RelationType
	}
	encoded := make([]encodedRel, len(rows))
	for i, row := range rows {
		rec := rowToRecord(header, row)
		data, err := json.Marshal(rec)
		if err != nil {
			return loaded, fallbacks, warning, fmt.Errorf("encoding relation row %d: %w", i, err)
		}
		typ := types.RelationType(rec["type"])
		encoded[i] = encodedRel{
			key:    relationKey(rec["from"], rec["to"], typ),
			outIdx: outKey(rec["from"], rec["to"], typ),
			inIdx:  inKey(rec["from"], rec["to"], typ),
			val:    data,
			from:   rec["from"], to: rec["to"], typ: typ,
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wb := s.db.NewWriteBatch()
	batchErr := func() error {
		for _, e := range encoded {
			if err := wb.Set(e.key, e.val); err != nil {
				return err
			}
			if err := wb.Set(e.outIdx, []byte{}); err != nil {
				return err
			}
			if err := wb.Set(e.inIdx, []byte{}); err != nil {
				return err
			}
		}
		return wb.Flush()
	}()
	if batchErr == nil {
		return len(rows), 0, warning, nil
	}
	wb.Cancel()

	for _, e := range encoded {
		if err := s.db.Update(func(txn *badger.Txn) error {
			if err := txn.Set(e.key, e.val); err != nil {
				return err
			}
			if err := txn.Set(e.outIdx, []byte{}); err != nil {
				return err
			}
			return txn.Set(e.inIdx, []byte{})
		}); err != nil {
			return loaded, fallbacks, warning, fmt.Errorf("fallback insert relation %s->%s: %w", e.from, e.to, err)
		}
		loaded++
		fallbacks++
	}
	return loaded, fallbacks, warning, nil
}

// pairLabelsFromFilename parses "rel_<From>__<To>.csv" as written by
// csvbuild.SplitRelationsByPair.
func pairLabelsFromFilename(name string) (from, to types.NodeLabel, ok bool) {
	name = strings.TrimSuffix(name, ".csv")
	name = strings.TrimPrefix(name, "rel_")
	parts := strings.SplitN(name, "__", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return types.NodeLabel(parts[0]), types.NodeLabel(parts[1]), true
}

// GetNode returns the raw field map for a node id, or nil if absent.
func (s *Store) GetNode(id string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rec map[string]string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(nodeKey(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	return rec, err
}

// Outgoing returns the (to, type) pairs of every relation whose from id
// matches, used by graph-traversal queries (impact/explore).
func (s *Store) Outgoing(from string) ([]types.Relation, error) {
	var rels []types.Relation
	s.mu.RLock()
	defer s.mu.RUnlock()

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := prefixOut + from + ":"
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			rest := strings.TrimPrefix(key, prefix)
			parts := strings.SplitN(rest, ":", 2)
			if len(parts) != 2 {
				continue
			}
			rels = append(rels, types.Relation{From: from, Type: types.RelationType(parts[0]), To: parts[1]})
		}
		return nil
	})
	return rels, err
}

// Incoming returns the (from, type) pairs of every relation whose to id
// matches.
func (s *Store) Incoming(to string) ([]types.Relation, error) {
	var rels []types.Relation
	s.mu.RLock()
	defer s.mu.RUnlock()

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := prefixIn + to + ":"
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			rest := strings.TrimPrefix(key, prefix)
			parts := strings.SplitN(rest, ":", 2)
			if len(parts) != 2 {
				continue
			}
			rels = append(rels, types.Relation{From: parts[1], Type: types.RelationType(parts[0]), To: to})
		}
		return nil
	})
	return rels, err
}

// LoadEmbeddings bulk-loads a CodeEmbedding.csv produced by
// csvbuild.Builder.WriteEmbeddings into the CodeEmbedding table,
// keyed under its own prefix rather than nodeKey's so an embedding row
// never shadows the symbol node sharing its id.
func (s *Store) LoadEmbeddings(path string) (loaded int, err error) {
	if _, statErr := os.Stat(path); statErr != nil {
		return 0, nil
	}
	header, rows, err := readRows(path)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wb := s.db.NewWriteBatch()
	for _, row := range rows {
		rec := rowToRecord(header, row)
		data, encErr := json.Marshal(rec)
		if encErr != nil {
			wb.Cancel()
			return loaded, fmt.Errorf("encoding embedding row: %w", encErr)
		}
		if setErr := wb.Set([]byte(prefixEmbedding+rec["nodeId"]), data); setErr != nil {
			wb.Cancel()
			return loaded, setErr
		}
		loaded++
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}
	return loaded, nil
}

// AllEmbeddings returns every CodeEmbedding record currently persisted,
// for replay into a fresh run's in-memory store. Re-ingestion restores
// previously computed embeddings, and the replay must happen before the
// staging swap.
func (s *Store) AllEmbeddings() ([]types.CodeEmbedding, error) {
	var out []types.CodeEmbedding
	s.mu.RLock()
	defer s.mu.RUnlock()

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixEmbedding)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			nodeID := strings.TrimPrefix(string(item.Key()), prefixEmbedding)
			var rec map[string]string
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			out = append(out, types.CodeEmbedding{NodeID: nodeID, Embedding: csvbuild.ParseFloats(rec["embedding"])})
		}
		return nil
	})
	return out, err
}
