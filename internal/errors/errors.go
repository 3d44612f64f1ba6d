// Package errors defines the structured error kinds GitNexus's ingestion
// pipeline reports.
package errors

import (
	"fmt"
	"sync"
	"time"
)

// Kind classifies a pipeline error. It is a classification,
// not a Go type switch target — every kind except internal has a concrete
// struct below so callers can attach kind-specific context.
type Kind string

const (
	KindInput       Kind = "input"       // unparseable source, unknown language, binary file
	KindResolution  Kind = "resolution"  // unresolved import/call (expected, non-fatal)
	KindSchema      Kind = "schema"      // bulk-load refused an undeclared (from,to) pair
	KindPersistence Kind = "persistence" // DB init or catastrophic COPY failure (fatal)
	KindCancel      Kind = "cancel"      // cancellation requested mid-run
	KindInternal    Kind = "internal"
)

// InputError represents a per-file problem that does not stop the run
// (logged and skipped; the run continues).
type InputError struct {
	FilePath   string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

func NewInputError(filePath, op string, err error) *InputError {
	return &InputError{FilePath: filePath, Operation: op, Underlying: err, Timestamp: time.Now()}
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input: %s failed for %s: %v", e.Operation, e.FilePath, e.Underlying)
}

func (e *InputError) Unwrap() error { return e.Underlying }

// ResolutionMiss records an import or call that could not be resolved.
// Unresolved imports are silently dropped and unresolved calls simply
// skipped; this type exists so phases can collect counts for the
// end-of-run summary without logging per file.
type ResolutionMiss struct {
	Kind       string // "import" | "call" | "heritage"
	FromPath   string
	Target     string
}

func (e *ResolutionMiss) Error() string {
	return fmt.Sprintf("resolution: unresolved %s %q from %s", e.Kind, e.Target, e.FromPath)
}

// SchemaWarning records a bulk-load row rejected for an undeclared
// (fromLabel,toLabel) pair; the edges are still loaded and the warning is
// surfaced at the end of the run.
type SchemaWarning struct {
	FromLabel string
	ToLabel   string
	RelType   string
	Count     int
}

func (e *SchemaWarning) Error() string {
	return fmt.Sprintf("schema: %d %s edges (%s->%s) not declared in schema, loaded anyway",
		e.Count, e.RelType, e.FromLabel, e.ToLabel)
}

// PersistenceError is fatal for the run: the staging directory is discarded
// and the previous artifact is left untouched.
type PersistenceError struct {
	Operation  string
	Underlying error
	Timestamp  time.Time
}

func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Operation: op, Underlying: err, Timestamp: time.Now()}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s failed: %v", e.Operation, e.Underlying)
}

func (e *PersistenceError) Unwrap() error { return e.Underlying }

// CancelRequested signals a cooperative shutdown at the next safe point.
type CancelRequested struct {
	Phase string
}

func (e *CancelRequested) Error() string {
	return fmt.Sprintf("cancel requested during phase %s", e.Phase)
}

// WarningList accumulates non-fatal warnings across a single ingestion run
// and renders the end-of-run summary. Phase workers add to it
// concurrently, so every mutator takes mu; Go's race detector would
// otherwise flag the unsynchronized appends from runPerFile's per-file
// goroutines.
type WarningList struct {
	mu sync.Mutex

	ResolutionMisses []ResolutionMiss
	SchemaWarnings   []SchemaWarning
	InputErrors      []InputError
}

func (w *WarningList) AddResolutionMiss(kind, fromPath, target string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ResolutionMisses = append(w.ResolutionMisses, ResolutionMiss{Kind: kind, FromPath: fromPath, Target: target})
}

func (w *WarningList) AddInputError(e *InputError) {
	if e == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.InputErrors = append(w.InputErrors, *e)
}

func (w *WarningList) AddSchemaWarning(fromLabel, toLabel, relType string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.SchemaWarnings {
		sw := &w.SchemaWarnings[i]
		if sw.FromLabel == fromLabel && sw.ToLabel == toLabel && sw.RelType == relType {
			sw.Count++
			return
		}
	}
	w.SchemaWarnings = append(w.SchemaWarnings, SchemaWarning{FromLabel: fromLabel, ToLabel: toLabel, RelType: relType, Count: 1})
}

// Summary renders a counts-only one-line summary rather than per-file
// logs.
func (w *WarningList) Summary() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fmt.Sprintf("%d resolution misses, %d schema warnings, %d input errors",
		len(w.ResolutionMisses), len(w.SchemaWarnings), len(w.InputErrors))
}
