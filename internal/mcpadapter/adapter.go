// Package mcpadapter exposes the Query Surface over the agent tool
// protocol on stdin/stdout: one mcp.Server, one AddTool call per tool,
// manual JSON unmarshaling of tool arguments, and a uniform JSON-text
// response shape with IsError set on failure.
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gitnexus/gitnexus/internal/query"
)

// Adapter wires a Query Surface to an MCP stdio server. repoRoot is
// reported by list_repos, the tool a client calls first to learn what
// it's talking to.
type Adapter struct {
	server   *mcp.Server
	surface  *query.Surface
	repoRoot string
}

// New builds an Adapter and registers the tool surface: list_repos,
// search, cypher, overview, explore, impact.
func New(surface *query.Surface, repoRoot string) *Adapter {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "gitnexus-mcp-server",
		Version: "0.1.0",
	}, nil)

	a := &Adapter{server: server, surface: surface, repoRoot: repoRoot}
	a.registerTools()
	return a
}

// Run blocks serving tool calls over stdio until ctx is cancelled.
func (a *Adapter) Run(ctx context.Context) error {
	return a.server.Run(ctx, &mcp.StdioTransport{})
}

func (a *Adapter) registerTools() {
	a.server.AddTool(&mcp.Tool{
		Name:        "list_repos",
		Description: "List the repository this server is currently indexing",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, a.handleListRepos)

	a.server.AddTool(&mcp.Tool{
		Name:        "search",
		Description: "Hybrid BM25 + vector code search, fused by reciprocal rank",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query": {Type: "string", Description: "search text"},
				"k":     {Type: "integer", Description: "max results (default 10)"},
			},
			Required: []string{"query"},
		},
	}, a.handleSearch)

	a.server.AddTool(&mcp.Tool{
		Name:        "cypher",
		Description: "Run a single-hop MATCH (a[:Label])-[[:TYPE]]->(b[:Label]) RETURN ... query against the graph",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query": {Type: "string", Description: "the MATCH/RETURN query text"},
			},
			Required: []string{"query"},
		},
	}, a.handleCypher)

	a.server.AddTool(&mcp.Tool{
		Name:        "overview",
		Description: "Aggregate listing of every discovered community and process",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, a.handleOverview)

	a.server.AddTool(&mcp.Tool{
		Name:        "explore",
		Description: "Canonical report for one symbol, cluster, or process by name",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"name": {Type: "string", Description: "exact symbol/cluster/process name"},
				"type": {Type: "string", Description: "one of symbol, cluster, process (default symbol)"},
			},
			Required: []string{"name"},
		},
	}, a.handleExplore)

	a.server.AddTool(&mcp.Tool{
		Name:        "impact",
		Description: "BFS impact analysis: what breaks upstream/downstream of a target symbol",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"target":    {Type: "string", Description: "exact symbol name"},
				"direction": {Type: "string", Description: "upstream or downstream (default downstream)"},
				"max_depth": {Type: "integer", Description: "0 or omitted means unbounded"},
			},
			Required: []string{"target"},
		},
	}, a.handleImpact)
}

func (a *Adapter) handleListRepos(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return withHint(map[string]interface{}{
		"repos": []map[string]string{{"path": a.repoRoot}},
	}, "call search or overview next to start exploring this repo"), nil
}

type searchParams struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

func (a *Adapter) handleSearch(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args searchParams
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return errorResult("search", fmt.Errorf("invalid parameters: %w", err)), nil
	}
	if args.Query == "" {
		return errorResult("search", fmt.Errorf("query is required")), nil
	}
	k := args.K
	if k <= 0 {
		k = 10
	}
	result := a.surface.HybridSearch(ctx, args.Query, k)
	return withHint(result, "call explore with a symbol name from these results for callers/callees, or impact to see what depends on it"), nil
}

type cypherParams struct {
	Query string `json:"query"`
}

func (a *Adapter) handleCypher(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args cypherParams
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return errorResult("cypher", fmt.Errorf("invalid parameters: %w", err)), nil
	}
	if args.Query == "" {
		return errorResult("cypher", fmt.Errorf("query is required")), nil
	}
	result, err := a.surface.Cypher(args.Query)
	if err != nil {
		return errorResult("cypher", err), nil
	}
	return withHint(result, "narrow the pattern further or use explore for a full report on one of these nodes"), nil
}

func (a *Adapter) handleOverview(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result := a.surface.Overview()
	return withHint(result, "call explore with type=cluster or type=process and a name from this listing"), nil
}

type exploreParams struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (a *Adapter) handleExplore(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args exploreParams
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return errorResult("explore", fmt.Errorf("invalid parameters: %w", err)), nil
	}
	if args.Name == "" {
		return errorResult("explore", fmt.Errorf("name is required")), nil
	}
	kind := args.Type
	if kind == "" {
		kind = query.KindSymbol
	}
	result, err := a.surface.Explore(args.Name, kind)
	if err != nil {
		return errorResult("explore", err), nil
	}
	return withHint(result, "call impact with this name to see what breaks if it changes"), nil
}

type impactParams struct {
	Target    string `json:"target"`
	Direction string `json:"direction"`
	MaxDepth  int    `json:"max_depth"`
}

func (a *Adapter) handleImpact(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args impactParams
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return errorResult("impact", fmt.Errorf("invalid parameters: %w", err)), nil
	}
	if args.Target == "" {
		return errorResult("impact", fmt.Errorf("target is required")), nil
	}
	direction := args.Direction
	if direction == "" {
		direction = query.DirectionDownstream
	}
	result, err := a.surface.Impact(args.Target, direction, args.MaxDepth, nil, 0)
	if err != nil {
		return errorResult("impact", err), nil
	}
	return withHint(result, "call explore on any affected symbol for its own callers and callees"), nil
}

// withHint appends a short next-step hint after the primary payload.
func withHint(data interface{}, hint string) *mcp.CallToolResult {
	content, err := json.Marshal(map[string]interface{}{
		"result": data,
		"hint":   hint,
	})
	if err != nil {
		return errorResult("marshal", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(content)}},
	}
}

// errorResult reports the failure inside the result payload with
// IsError set, rather than as a protocol-level error, so the calling
// model can see what went wrong and retry.
func errorResult(operation string, err error) *mcp.CallToolResult {
	content, marshalErr := json.Marshal(map[string]interface{}{
		"success":   false,
		"operation": operation,
		"error":     err.Error(),
	})
	if marshalErr != nil {
		content = []byte(`{"success":false,"error":"internal marshal failure"}`)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(content)}},
		IsError: true,
	}
}
