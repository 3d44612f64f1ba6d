// Package types defines the entities and relationships of the GitNexus code
// knowledge graph, shared by every ingestion and query package.
package types

import "fmt"

// Size limits for persisted text fields. Kept configurable (see
// internal/config) rather than hard-coded.
const (
	DefaultMaxFileContentChars   = 10000
	DefaultMaxSymbolSnippetChars = 5000
)

// NodeLabel identifies the closed set of node kinds GitNexus persists.
type NodeLabel string

const (
	LabelFile      NodeLabel = "File"
	LabelFolder    NodeLabel = "Folder"
	LabelCommunity NodeLabel = "Community"
	LabelProcess   NodeLabel = "Process"

	// CodeSymbol labels.
	LabelFunction    NodeLabel = "Function"
	LabelClass       NodeLabel = "Class"
	LabelInterface   NodeLabel = "Interface"
	LabelMethod      NodeLabel = "Method"
	LabelCodeElement NodeLabel = "CodeElement"
	LabelStruct      NodeLabel = "Struct"
	LabelEnum        NodeLabel = "Enum"
	LabelMacro       NodeLabel = "Macro"
	LabelTypedef     NodeLabel = "Typedef"
	LabelUnion       NodeLabel = "Union"
	LabelNamespace   NodeLabel = "Namespace"
	LabelTrait       NodeLabel = "Trait"
	LabelImpl        NodeLabel = "Impl"
	LabelTypeAlias   NodeLabel = "TypeAlias"
	LabelConst       NodeLabel = "Const"
	LabelStatic      NodeLabel = "Static"
	LabelProperty    NodeLabel = "Property"
	LabelRecord      NodeLabel = "Record"
	LabelDelegate    NodeLabel = "Delegate"
	LabelAnnotation  NodeLabel = "Annotation"
	LabelConstructor NodeLabel = "Constructor"
	LabelTemplate    NodeLabel = "Template"
	LabelModule      NodeLabel = "Module"
)

// CodeSymbolLabels is the closed set of labels a CodeSymbol may carry.
var CodeSymbolLabels = map[NodeLabel]bool{
	LabelFunction: true, LabelClass: true, LabelInterface: true, LabelMethod: true,
	LabelCodeElement: true, LabelStruct: true, LabelEnum: true, LabelMacro: true,
	LabelTypedef: true, LabelUnion: true, LabelNamespace: true, LabelTrait: true,
	LabelImpl: true, LabelTypeAlias: true, LabelConst: true, LabelStatic: true,
	LabelProperty: true, LabelRecord: true, LabelDelegate: true, LabelAnnotation: true,
	LabelConstructor: true, LabelTemplate: true, LabelModule: true,
}

// exportableLabels may carry a meaningful IsExported flag.
var exportableLabels = map[NodeLabel]bool{
	LabelFunction: true, LabelClass: true, LabelInterface: true,
	LabelMethod: true, LabelCodeElement: true,
}

// IsExportableLabel reports whether a label's IsExported flag is meaningful.
func IsExportableLabel(l NodeLabel) bool {
	return exportableLabels[l]
}

// RelationType is the CodeRelation discriminator.
type RelationType string

const (
	RelContains       RelationType = "CONTAINS"
	RelDefines        RelationType = "DEFINES"
	RelImports        RelationType = "IMPORTS"
	RelCalls          RelationType = "CALLS"
	RelExtends        RelationType = "EXTENDS"
	RelImplements     RelationType = "IMPLEMENTS"
	RelMemberOf       RelationType = "MEMBER_OF"
	RelStepInProcess  RelationType = "STEP_IN_PROCESS"
)

// CallReason tags the resolver strategy that produced a CALLS edge.
type CallReason string

const (
	ReasonImportResolved CallReason = "import-resolved"
	ReasonSameFile        CallReason = "same-file"
	ReasonFuzzyGlobal      CallReason = "fuzzy-global"
	ReasonTraitImpl        CallReason = "trait-impl"
)

// Confidence values per resolver strategy.
const (
	ConfidenceImportResolved = 0.9
	ConfidenceSameFile       = 0.85
	ConfidenceFuzzySingle    = 0.5
	ConfidenceFuzzyMultiple  = 0.3
	ConfidenceStructural     = 1.0
)

// EnrichedBy records which collaborator produced a Community's label.
type EnrichedBy string

const (
	EnrichedHeuristic EnrichedBy = "heuristic"
	EnrichedLLM       EnrichedBy = "llm"
)

// ProcessType classifies a traced call chain by community span.
type ProcessType string

const (
	ProcessIntraCommunity ProcessType = "intra-community"
	ProcessCrossCommunity ProcessType = "cross-community"
)

// FileNode is a source file persisted in the graph.
type FileNode struct {
	ID       string
	Name     string
	FilePath string
	Content  string
}

// FolderNode is a directory persisted in the graph.
type FolderNode struct {
	ID       string
	Name     string
	FilePath string
}

// CodeSymbol is the polymorphic extracted-symbol entity. Label drives
// schema routing and IsExported semantics rather than Go-level inheritance.
type CodeSymbol struct {
	ID          string
	Label       NodeLabel
	Name        string
	FilePath    string
	StartLine   int
	EndLine     int
	Content     string
	IsExported  bool
	Description string
	// Synthetic marks a placeholder node materialized for a dangling
	// heritage target; never written to CSV output.
	Synthetic bool
}

// Community is a cluster of densely interconnected symbols.
type Community struct {
	ID             string
	Label          string
	HeuristicLabel string
	Keywords       []string
	Description    string
	EnrichedBy     EnrichedBy
	Cohesion       float64
	SymbolCount    int
}

// Process is a traced call chain from an entry point.
type Process struct {
	ID             string
	Label          string
	HeuristicLabel string
	ProcessType    ProcessType
	StepCount      int
	Communities    []string
	EntryPointID   string
	TerminalID     string
}

// CodeEmbedding is the optional per-symbol vector.
type CodeEmbedding struct {
	NodeID    string
	Embedding []float32
}

// Relation is the single typed edge kind CodeRelation.
type Relation struct {
	From       string
	To         string
	Type       RelationType
	Confidence float64
	Reason     CallReason
	Step       int
}

// FileNodeID builds the stable id for a File entity.
func FileNodeID(filePath string) string {
	return "File:" + filePath
}

// FolderNodeID builds the stable id for a Folder entity.
func FolderNodeID(filePath string) string {
	return "Folder:" + filePath
}

// SymbolNodeID builds the stable id for a CodeSymbol entity.
func SymbolNodeID(label NodeLabel, filePath, name string) string {
	return fmt.Sprintf("%s:%s:%s", label, filePath, name)
}

// CommunityNodeID builds the stable id for a Community entity.
func CommunityNodeID(n int) string {
	return fmt.Sprintf("comm_%d", n)
}

// ProcessNodeID builds the stable id for a Process entity.
func ProcessNodeID(n int) string {
	return fmt.Sprintf("proc_%d", n)
}

// SyntheticSymbolID builds a dangling-target id when a heritage parent could
// not be resolved.
func SyntheticSymbolID(label NodeLabel, name string) string {
	return fmt.Sprintf("%s:%s", label, name)
}
