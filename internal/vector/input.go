package vector

import (
	"strings"

	"github.com/gitnexus/gitnexus/internal/types"
)

// EmbeddableLabels is the closed set of node labels that get embeddings:
// Function, Class, Method, Interface.
var EmbeddableLabels = []types.NodeLabel{
	types.LabelFunction, types.LabelClass, types.LabelMethod, types.LabelInterface,
}

// BuildInput forms the embedding input text for a symbol: name + snippet +
// file path, snippet capped at maxSnippetChars.
func BuildInput(sym *types.CodeSymbol, maxSnippetChars int) string {
	snippet := sym.Content
	if maxSnippetChars > 0 && len(snippet) > maxSnippetChars {
		snippet = snippet[:maxSnippetChars]
	}
	var b strings.Builder
	b.WriteString(sym.Name)
	b.WriteByte('\n')
	b.WriteString(snippet)
	b.WriteByte('\n')
	b.WriteString(sym.FilePath)
	return b.String()
}
