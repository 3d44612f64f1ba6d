// Package persist implements the embedded Graph Persistence layer:
// schema install, COPY-equivalent bulk load from internal/csvbuild's CSVs,
// and a per-row fallback so a bad batch never silently drops a valid edge.
// The relational schema install is expressed as a documented Badger
// key-prefix convention instead of literal DDL.
package persist

import "github.com/gitnexus/gitnexus/internal/types"

// Key prefixes. A real relational schema install has no Badger
// equivalent; this convention is the documented substitute. Every node
// table becomes one prefix; the single typed relation
// table becomes one prefix holding (from,to,type) composite keys so a
// relation's identity is its key, matching the property graph's
// no-duplicate-edge semantics.
const (
	prefixNode      = "N:" // N:<id>                   -> encoded node
	prefixRelation  = "R:" // R:<from>:<type>:<to>      -> encoded relation
	prefixEmbedding = "E:" // E:<nodeId>                -> encoded embedding
	prefixOut       = "O:" // O:<from>:<type>:<to>      -> "" (outgoing index)
	prefixIn        = "I:" // I:<to>:<type>:<from>      -> "" (incoming index)
)

// permittedPairs is the closed set of (fromLabel, toLabel) pairs the schema
// accepts. A pair outside this set produces a SchemaWarning rather than
// a silent insert.
var permittedPairs = map[types.NodeLabel]map[types.NodeLabel]bool{
	types.LabelFolder: {types.LabelFolder: true, types.LabelFile: true},
	types.LabelFile:   {types.LabelFile: true}, // IMPORTS (File->File, resolved only)
}

func init() {
	for label := range types.CodeSymbolLabels {
		permittedPairs[types.LabelFile] = addDefines(permittedPairs[types.LabelFile], label)
		if permittedPairs[label] == nil {
			permittedPairs[label] = map[types.NodeLabel]bool{}
		}
		for other := range types.CodeSymbolLabels {
			permittedPairs[label][other] = true // CALLS, EXTENDS, IMPLEMENTS between any symbol kinds
		}
		permittedPairs[label][types.LabelCommunity] = true // MEMBER_OF
		permittedPairs[label][types.LabelProcess] = true   // STEP_IN_PROCESS
	}
}

func addDefines(m map[types.NodeLabel]bool, label types.NodeLabel) map[types.NodeLabel]bool {
	if m == nil {
		m = map[types.NodeLabel]bool{}
	}
	m[label] = true
	return m
}

// PairPermitted reports whether the schema declares an edge from fromLabel
// to toLabel. Used to classify a SchemaWarning during bulk load.
func PairPermitted(from, to types.NodeLabel) bool {
	inner, ok := permittedPairs[from]
	if !ok {
		return false
	}
	return inner[to]
}
