// Package parser is GitNexus's tree-sitter grammar registry: one lazily
// initialized language + capture query per supported language tag, consumed
// by the Symbol Extractor (internal/extract) and the Reference Resolver
// (internal/resolve).
package parser

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// Registry holds one lazily-initialized tree-sitter language + capture
// query per supported language tag. Initialization is deferred to first
// use since a repo may never touch most of the registered grammars.
type Registry struct {
	mu sync.Mutex

	langs      map[string]*tree_sitter.Language
	queries    map[string]*tree_sitter.Query
	initFns    map[string]func() (*tree_sitter.Language, string)
	initDone   map[string]bool
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry, initialized once.
func Default() *Registry {
	defaultOnce.Do(func() { defaultReg = New() })
	return defaultReg
}

// New builds a registry with all supported languages registered (but not
// yet initialized).
func New() *Registry {
	r := &Registry{
		langs:    make(map[string]*tree_sitter.Language),
		queries:  make(map[string]*tree_sitter.Query),
		initFns:  make(map[string]func() (*tree_sitter.Language, string)),
		initDone: make(map[string]bool),
	}
	r.initFns["go"] = func() (*tree_sitter.Language, string) {
		return tree_sitter.NewLanguage(tree_sitter_go.Language()), goQuery
	}
	r.initFns["javascript"] = func() (*tree_sitter.Language, string) {
		return tree_sitter.NewLanguage(tree_sitter_javascript.Language()), jsQuery
	}
	r.initFns["typescript"] = func() (*tree_sitter.Language, string) {
		return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()), tsQuery
	}
	r.initFns["python"] = func() (*tree_sitter.Language, string) {
		return tree_sitter.NewLanguage(tree_sitter_python.Language()), pyQuery
	}
	return r
}

// Supported reports whether lang has a registered grammar.
func (r *Registry) Supported(lang string) bool {
	_, ok := r.initFns[lang]
	return ok
}

func (r *Registry) ensure(lang string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.initDone[lang] {
		return nil
	}
	fn, ok := r.initFns[lang]
	if !ok {
		return fmt.Errorf("parser: unsupported language %q", lang)
	}
	language, queryStr := fn()
	query, err := tree_sitter.NewQuery(language, queryStr)
	if err != nil {
		return fmt.Errorf("parser: compiling capture query for %s: %w", lang, err)
	}
	r.langs[lang] = language
	r.queries[lang] = query
	r.initDone[lang] = true
	return nil
}

// Language returns the (lazily initialized) tree-sitter language for lang.
func (r *Registry) Language(lang string) (*tree_sitter.Language, error) {
	if err := r.ensure(lang); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.langs[lang], nil
}

// Query returns the compiled capture query for lang.
func (r *Registry) Query(lang string) (*tree_sitter.Query, error) {
	if err := r.ensure(lang); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queries[lang], nil
}

// Parse parses content as lang and returns a tree ready for insertion into
// the AST cache (*tree_sitter.Tree already satisfies astcache.Tree via its
// own Close method).
func (r *Registry) Parse(lang string, content []byte) (*tree_sitter.Tree, error) {
	language, err := r.Language(lang)
	if err != nil {
		return nil, err
	}
	p := tree_sitter.NewParser()
	defer p.Close()
	if err := p.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("parser: set language %s: %w", lang, err)
	}
	tree := p.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("parser: parse failed for language %s", lang)
	}
	return tree, nil
}
