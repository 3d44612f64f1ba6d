// Package process implements the Process Tracer: entry-point discovery,
// depth-bounded BFS over CALLS, and Process/STEP_IN_PROCESS
// materialization, run strictly after the Reference Resolver so every
// call edge has already settled.
package process

import (
	"strings"

	"github.com/gitnexus/gitnexus/internal/types"
)

// httpHandlerNamePatterns are conventional HTTP-handler name substrings,
// frozen for reproducibility across runs.
var httpHandlerNamePatterns = []string{
	"handler", "handle", "controller", "route", "endpoint",
	"get", "post", "put", "patch", "delete",
}

// languageEntryNames are exact conventional entry-point names per language
//.
var languageEntryNames = map[string][]string{
	"go":         {"main", "init"},
	"python":     {"main", "__main__"},
	"javascript": {"main"},
	"typescript": {"main"},
	"rust":       {"main"},
	"c":          {"main", "_start"},
	"cpp":        {"main", "_start"},
	"csharp":     {"Main"},
	"java":       {"main"},
}

// IsEntryPoint reports whether sym qualifies as an entry point. A
// conventional language entry name qualifies regardless of the export flag:
// Go's `main` and C's `_start` are never exported by their language's rule,
// yet are the canonical entry points. HTTP-handler-like names additionally
// require exportedness, since an unexported handler cannot be wired from
// outside its module.
func IsEntryPoint(sym *types.CodeSymbol, language string) bool {
	if sym == nil {
		return false
	}
	if names, ok := languageEntryNames[language]; ok {
		for _, n := range names {
			if sym.Name == n {
				return true
			}
		}
	}
	return sym.IsExported && isHTTPHandlerName(sym.Name)
}

// isHTTPHandlerName checks sym.Name (case-insensitively) against the frozen
// HTTP-handler substring set.
func isHTTPHandlerName(name string) bool {
	lower := strings.ToLower(name)
	for _, pat := range httpHandlerNamePatterns {
		if strings.Contains(lower, pat) {
			return true
		}
	}
	return false
}
