// Package graph implements the in-memory property graph store: nodes keyed
// by content-derived ids, one typed relation kind with iterators for every
// downstream phase (resolver, community detector, process tracer, CSV
// builder).
package graph

import (
	"sort"
	"sync"

	"github.com/gitnexus/gitnexus/internal/types"
)

// Store is the single shared property graph instance for one ingestion run.
// Writers from parallel phase workers call the Add* methods, which are
// safe for concurrent use under one coarse mutex.
type Store struct {
	mu sync.Mutex

	files   map[string]*types.FileNode
	folders map[string]*types.FolderNode
	symbols map[string]*types.CodeSymbol
	comms   map[string]*types.Community
	procs   map[string]*types.Process
	embeds  map[string]*types.CodeEmbedding

	fileOrder []string
	folderOrd []string
	symOrder  []string
	commOrder []string
	procOrder []string

	relations []types.Relation
	relSeen   map[string]bool // dedupe key -> true
}

// NewStore returns an empty graph store.
func NewStore() *Store {
	return &Store{
		files:   make(map[string]*types.FileNode),
		folders: make(map[string]*types.FolderNode),
		symbols: make(map[string]*types.CodeSymbol),
		comms:   make(map[string]*types.Community),
		procs:   make(map[string]*types.Process),
		embeds:  make(map[string]*types.CodeEmbedding),
		relSeen: make(map[string]bool),
	}
}

// AddFile inserts a File node idempotently: same id, same entity.
func (s *Store) AddFile(f *types.FileNode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[f.ID]; !ok {
		s.fileOrder = append(s.fileOrder, f.ID)
	}
	s.files[f.ID] = f
}

// AddFolder inserts a Folder node idempotently.
func (s *Store) AddFolder(f *types.FolderNode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.folders[f.ID]; !ok {
		s.folderOrd = append(s.folderOrd, f.ID)
	}
	s.folders[f.ID] = f
}

// AddSymbol inserts a CodeSymbol idempotently. A non-synthetic write always
// wins over a previously-recorded synthetic placeholder: synthetic nodes are
// weak references, replaced once the real symbol appears.
func (s *Store) AddSymbol(sym *types.CodeSymbol) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.symbols[sym.ID]
	if !ok {
		s.symOrder = append(s.symOrder, sym.ID)
		s.symbols[sym.ID] = sym
		return
	}
	if existing.Synthetic && !sym.Synthetic {
		s.symbols[sym.ID] = sym
	}
}

// GetSymbol returns the symbol for id, if present.
func (s *Store) GetSymbol(id string) (*types.CodeSymbol, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sym, ok := s.symbols[id]
	return sym, ok
}

// GetFile returns the file node for id, if present.
func (s *Store) GetFile(id string) (*types.FileNode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	return f, ok
}

// HasNode reports whether any node (of any kind) carries this id.
func (s *Store) HasNode(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[id]; ok {
		return true
	}
	if _, ok := s.folders[id]; ok {
		return true
	}
	if _, ok := s.symbols[id]; ok {
		return true
	}
	if _, ok := s.comms[id]; ok {
		return true
	}
	if _, ok := s.procs[id]; ok {
		return true
	}
	return false
}

// GetCommunity returns the community for id, if present.
func (s *Store) GetCommunity(id string) (*types.Community, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comms[id]
	return c, ok
}

// GetProcess returns the process for id, if present.
func (s *Store) GetProcess(id string) (*types.Process, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.procs[id]
	return p, ok
}

// GetFolder returns the folder node for id, if present.
func (s *Store) GetFolder(id string) (*types.FolderNode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.folders[id]
	return f, ok
}

// AddCommunity inserts a Community node idempotently.
func (s *Store) AddCommunity(c *types.Community) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comms[c.ID]; !ok {
		s.commOrder = append(s.commOrder, c.ID)
	}
	s.comms[c.ID] = c
}

// AddProcess inserts a Process node idempotently.
func (s *Store) AddProcess(p *types.Process) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.procs[p.ID]; !ok {
		s.procOrder = append(s.procOrder, p.ID)
	}
	s.procs[p.ID] = p
}

// AddEmbedding records {nodeId, embedding}. Overwrites on
// re-ingestion so cached embeddings can be replayed before fresh ones.
func (s *Store) AddEmbedding(e *types.CodeEmbedding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.embeds[e.NodeID] = e
}

// Embedding returns the embedding for a node id, if any; absence is
// valid.
func (s *Store) Embedding(nodeID string) (*types.CodeEmbedding, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.embeds[nodeID]
	return e, ok
}

// Embeddings returns every recorded CodeEmbedding, sorted by node id so
// persistence and replay are reproducible across runs.
func (s *Store) Embeddings() []*types.CodeEmbedding {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.CodeEmbedding, 0, len(s.embeds))
	for _, e := range s.embeds {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NodeID < out[j].NodeID })
	return out
}

// relationKey derives edge identity from (source, type, target) so a call
// site repeated within one source never produces duplicate edges.
func relationKey(r types.Relation) string {
	switch r.Type {
	case types.RelCalls:
		return string(r.Type) + "|" + r.From + "|" + r.To
	default:
		return string(r.Type) + "|" + r.From + "|" + r.To
	}
}

// AddRelation appends a relationship, deduped by identity. For CALLS edges
// confidence must be in (0,1]; for all other types confidence is fixed at
// 1.0, enforced here rather than trusted from callers.
func (s *Store) AddRelation(r types.Relation) bool {
	if r.Type != types.RelCalls {
		r.Confidence = types.ConfidenceStructural
	}
	key := relationKey(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.relSeen[key] {
		return false
	}
	s.relSeen[key] = true
	s.relations = append(s.relations, r)
	return true
}

// Files returns File nodes in insertion order.
func (s *Store) Files() []*types.FileNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.FileNode, 0, len(s.fileOrder))
	for _, id := range s.fileOrder {
		out = append(out, s.files[id])
	}
	return out
}

// Folders returns Folder nodes in insertion order.
func (s *Store) Folders() []*types.FolderNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.FolderNode, 0, len(s.folderOrd))
	for _, id := range s.folderOrd {
		out = append(out, s.folders[id])
	}
	return out
}

// Symbols returns all CodeSymbol nodes in insertion order.
func (s *Store) Symbols() []*types.CodeSymbol {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.CodeSymbol, 0, len(s.symOrder))
	for _, id := range s.symOrder {
		out = append(out, s.symbols[id])
	}
	return out
}

// SymbolsByLabels filters Symbols() to the given label set, preserving order.
func (s *Store) SymbolsByLabels(labels ...types.NodeLabel) []*types.CodeSymbol {
	want := make(map[types.NodeLabel]bool, len(labels))
	for _, l := range labels {
		want[l] = true
	}
	all := s.Symbols()
	out := make([]*types.CodeSymbol, 0, len(all))
	for _, sym := range all {
		if want[sym.Label] {
			out = append(out, sym)
		}
	}
	return out
}

// Communities returns Community nodes in insertion order.
func (s *Store) Communities() []*types.Community {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.Community, 0, len(s.commOrder))
	for _, id := range s.commOrder {
		out = append(out, s.comms[id])
	}
	return out
}

// Processes returns Process nodes in insertion order.
func (s *Store) Processes() []*types.Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.Process, 0, len(s.procOrder))
	for _, id := range s.procOrder {
		out = append(out, s.procs[id])
	}
	return out
}

// Relations returns all relationships in insertion order.
func (s *Store) Relations() []types.Relation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Relation, len(s.relations))
	copy(out, s.relations)
	return out
}

// RelationsOfType filters Relations() by type, preserving order.
func (s *Store) RelationsOfType(t types.RelationType) []types.Relation {
	all := s.Relations()
	out := all[:0:0]
	for _, r := range all {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

// Adjacency builds an outgoing adjacency list id -> []targetID for the
// given relation types, used by the community detector and process tracer.
func (s *Store) Adjacency(types_ ...types.RelationType) map[string][]string {
	want := make(map[types.RelationType]bool, len(types_))
	for _, t := range types_ {
		want[t] = true
	}
	adj := make(map[string][]string)
	for _, r := range s.Relations() {
		if want[r.Type] {
			adj[r.From] = append(adj[r.From], r.To)
		}
	}
	return adj
}

// Stats summarizes the graph for meta.json.
type Stats struct {
	Files       int
	Nodes       int
	Edges       int
	Communities int
	Processes   int
}

// Stats computes aggregate counts.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	nodes := len(s.files) + len(s.folders) + len(s.symbols) + len(s.comms) + len(s.procs)
	return Stats{
		Files:       len(s.files),
		Nodes:       nodes,
		Edges:       len(s.relations),
		Communities: len(s.comms),
		Processes:   len(s.procs),
	}
}

// SortedSymbolIDs returns all symbol ids sorted, used wherever deterministic
// iteration order matters more than insertion order (community detection
// tie-breaking).
func (s *Store) SortedSymbolIDs() []string {
	s.mu.Lock()
	ids := make([]string, 0, len(s.symbols))
	for id := range s.symbols {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	sort.Strings(ids)
	return ids
}
