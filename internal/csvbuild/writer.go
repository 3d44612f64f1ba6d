// Package csvbuild implements the Bulk CSV Builder: one streaming
// RFC-4180 CSV per node label plus a relationship CSV, later split by
// (fromLabel, toLabel) pairs for per-pair bulk load, with a bounded lazy
// content cache for snippet text.
package csvbuild

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gitnexus/gitnexus/internal/graph"
	"github.com/gitnexus/gitnexus/internal/types"
)

// Builder streams a graph.Store's nodes and relations to CSV files under
// one output directory.
type Builder struct {
	repoRoot          string
	outDir            string
	cache             *contentCache
	maxFileContentLen int
}

// NewBuilder returns a Builder that reads source files relative to
// repoRoot and writes CSVs under outDir. contentCacheSize is
// Config.Ingest.ContentCacheSize (default ~3000); maxFileContentLen is
// Config.Index.MaxFileContentChars.
func NewBuilder(repoRoot, outDir string, contentCacheSize, maxFileContentLen int) *Builder {
	return &Builder{
		repoRoot:          repoRoot,
		outDir:            outDir,
		cache:             newContentCache(repoRoot, contentCacheSize),
		maxFileContentLen: maxFileContentLen,
	}
}

func (b *Builder) createCSV(name string) (*os.File, error) {
	if err := os.MkdirAll(b.outDir, 0o755); err != nil {
		return nil, err
	}
	return os.Create(filepath.Join(b.outDir, name))
}

// fileContent returns a File node's snippet text: its in-memory Content if
// already populated, else a lazy disk read through the bounded LRU
// content cache, capped to maxFileContentLen.
func (b *Builder) fileContent(f *types.FileNode) string {
	content := f.Content
	if content == "" {
		if fetched, err := b.cache.Get(f.FilePath); err == nil {
			content = fetched
		}
	}
	if b.maxFileContentLen > 0 && len(content) > b.maxFileContentLen {
		content = content[:b.maxFileContentLen]
	}
	return content
}

// WriteNodes streams one CSV per node label present in store:
// File.csv, Folder.csv, one <Label>.csv per CodeSymbol label that has at
// least one instance, Community.csv, Process.csv.
func (b *Builder) WriteNodes(store *graph.Store) error {
	if err := b.writeFiles(store); err != nil {
		return err
	}
	if err := b.writeFolders(store); err != nil {
		return err
	}
	if err := b.writeSymbols(store); err != nil {
		return err
	}
	if err := b.writeCommunities(store); err != nil {
		return err
	}
	return b.writeProcesses(store)
}

func (b *Builder) writeFiles(store *graph.Store) error {
	f, err := b.createCSV("File.csv")
	if err != nil {
		return err
	}
	defer f.Close()
	rw := newRowWriter(f)
	if err := rw.WriteRow([]string{"id", "name", "filePath", "content"}); err != nil {
		return err
	}
	for _, n := range store.Files() {
		if err := rw.WriteRow([]string{n.ID, n.Name, n.FilePath, b.fileContent(n)}); err != nil {
			return err
		}
	}
	return rw.Close()
}

func (b *Builder) writeFolders(store *graph.Store) error {
	f, err := b.createCSV("Folder.csv")
	if err != nil {
		return err
	}
	defer f.Close()
	rw := newRowWriter(f)
	if err := rw.WriteRow([]string{"id", "name", "filePath"}); err != nil {
		return err
	}
	for _, n := range store.Folders() {
		if err := rw.WriteRow([]string{n.ID, n.Name, n.FilePath}); err != nil {
			return err
		}
	}
	return rw.Close()
}

// symbolColumns is the shared CodeSymbol schema; all CodeSymbolLabels use
// the same columns, the label alone drives schema routing.
var symbolColumns = []string{"id", "name", "filePath", "startLine", "endLine", "content", "isExported", "description"}

func (b *Builder) writeSymbols(store *graph.Store) error {
	byLabel := make(map[types.NodeLabel][]*types.CodeSymbol)
	for _, sym := range store.Symbols() {
		if sym.Synthetic {
			continue
		}
		byLabel[sym.Label] = append(byLabel[sym.Label], sym)
	}
	for label, syms := range byLabel {
		f, err := b.createCSV(string(label) + ".csv")
		if err != nil {
			return err
		}
		rw := newRowWriter(f)
		if err := rw.WriteRow(symbolColumns); err != nil {
			f.Close()
			return err
		}
		for _, sym := range syms {
			row := []string{
				sym.ID, sym.Name, sym.FilePath,
				strconv.Itoa(sym.StartLine), strconv.Itoa(sym.EndLine),
				sym.Content, strconv.FormatBool(sym.IsExported), sym.Description,
			}
			if err := rw.WriteRow(row); err != nil {
				f.Close()
				return err
			}
		}
		if err := rw.Close(); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) writeCommunities(store *graph.Store) error {
	f, err := b.createCSV("Community.csv")
	if err != nil {
		return err
	}
	defer f.Close()
	rw := newRowWriter(f)
	cols := []string{"id", "label", "heuristicLabel", "keywords", "description", "enrichedBy", "cohesion", "symbolCount"}
	if err := rw.WriteRow(cols); err != nil {
		return err
	}
	for _, c := range store.Communities() {
		row := []string{
			c.ID, c.Label, c.HeuristicLabel, joinKeywords(c.Keywords), c.Description,
			string(c.EnrichedBy), strconv.FormatFloat(c.Cohesion, 'f', -1, 64), strconv.Itoa(c.SymbolCount),
		}
		if err := rw.WriteRow(row); err != nil {
			return err
		}
	}
	return rw.Close()
}

func (b *Builder) writeProcesses(store *graph.Store) error {
	f, err := b.createCSV("Process.csv")
	if err != nil {
		return err
	}
	defer f.Close()
	rw := newRowWriter(f)
	cols := []string{"id", "label", "heuristicLabel", "processType", "stepCount", "communities", "entryPointId", "terminalId"}
	if err := rw.WriteRow(cols); err != nil {
		return err
	}
	for _, p := range store.Processes() {
		row := []string{
			p.ID, p.Label, p.HeuristicLabel, string(p.ProcessType), strconv.Itoa(p.StepCount),
			joinKeywords(p.Communities), p.EntryPointID, p.TerminalID,
		}
		if err := rw.WriteRow(row); err != nil {
			return err
		}
	}
	return rw.Close()
}

// WriteEmbeddings streams the CodeEmbedding table to its own
// CSV, kept separate from WriteNodes's output so the generic by-id node
// loader in internal/persist never mistakes an embedding row for a graph
// node (a CodeEmbedding's id is a symbol id it does not own).
func (b *Builder) WriteEmbeddings(store *graph.Store) (string, error) {
	path := filepath.Join(b.outDir, "CodeEmbedding.csv")
	if err := os.MkdirAll(b.outDir, 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	rw := newRowWriter(f)
	if err := rw.WriteRow([]string{"nodeId", "embedding"}); err != nil {
		return "", err
	}
	for _, e := range store.Embeddings() {
		if err := rw.WriteRow([]string{e.NodeID, joinFloats(e.Embedding)}); err != nil {
			return "", err
		}
	}
	if err := rw.Close(); err != nil {
		return "", err
	}
	return path, nil
}

func joinFloats(vals []float32) string {
	out := ""
	for i, v := range vals {
		if i > 0 {
			out += ";"
		}
		out += strconv.FormatFloat(float64(v), 'g', -1, 32)
	}
	return out
}

// ParseFloats decodes a joinFloats-encoded embedding column back into a
// vector, the inverse used by internal/persist when loading CodeEmbedding
// rows. An empty string decodes to a nil (zero-length) vector.
func ParseFloats(s string) []float32 {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]float32, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 32)
		if err != nil {
			continue
		}
		out = append(out, float32(v))
	}
	return out
}

func joinKeywords(words []string) string {
	out := ""
	for i, w := range words {
		if i > 0 {
			out += ";"
		}
		out += w
	}
	return out
}

// WriteRelations streams every relation in store to relations.csv and
// returns its path.
func (b *Builder) WriteRelations(store *graph.Store) (string, error) {
	path := filepath.Join(b.outDir, "relations.csv")
	if err := os.MkdirAll(b.outDir, 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	rw := newRowWriter(f)
	cols := []string{"from", "to", "type", "confidence", "reason", "step"}
	if err := rw.WriteRow(cols); err != nil {
		return "", err
	}
	for _, r := range store.Relations() {
		row := []string{
			r.From, r.To, string(r.Type),
			strconv.FormatFloat(r.Confidence, 'f', -1, 64), string(r.Reason), strconv.Itoa(r.Step),
		}
		if err := rw.WriteRow(row); err != nil {
			return "", err
		}
	}
	if err := rw.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// labelPrefix returns the node-label prefix of an id for pair
// classification (File:…, Function:…, comm_…, proc_…).
func labelPrefix(id string) string {
	switch {
	case len(id) >= 5 && id[:5] == "comm_":
		return "Community"
	case len(id) >= 5 && id[:5] == "proc_":
		return "Process"
	default:
		for i := 0; i < len(id); i++ {
			if id[i] == ':' {
				return id[:i]
			}
		}
		return id
	}
}
