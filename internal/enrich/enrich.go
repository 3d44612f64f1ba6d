package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// batchSize and memberTruncation are fixed: up to 5 communities per
// request, members truncated to 15 per community.
const (
	batchSize        = 5
	memberTruncation = 15
)

// CommunityInput is one community's enrichment-eligible state: the
// heuristic label already computed by internal/community, plus a sample
// of member symbol names.
type CommunityInput struct {
	ID             string
	HeuristicLabel string
	Members        []string
	MemberCount    int
}

// EnrichedCommunity is the collaborator's (or the heuristic fallback's)
// verdict for one community.
type EnrichedCommunity struct {
	ID          string
	Label       string
	Keywords    []string
	Description string
	FromLLM     bool
}

// Batches splits communities into groups of at most batchSize, truncating
// each community's member list to memberTruncation entries.
func Batches(communities []CommunityInput) [][]CommunityInput {
	var batches [][]CommunityInput
	for start := 0; start < len(communities); start += batchSize {
		end := start + batchSize
		if end > len(communities) {
			end = len(communities)
		}
		batch := make([]CommunityInput, end-start)
		for i, c := range communities[start:end] {
			if len(c.Members) > memberTruncation {
				c.Members = c.Members[:memberTruncation]
			}
			batch[i] = c
		}
		batches = append(batches, batch)
	}
	return batches
}

// Enrich asks collaborator to enrich one batch of communities and returns
// one EnrichedCommunity per input, in the same order. Any failure (network
// error, or a response that does not parse into the expected shape) falls
// back to the heuristic label with empty keywords/description for every
// community in the batch, rather than only for the offending entry, since
// a malformed batch response gives no way to tell which community that
// entry was for.
func Enrich(ctx context.Context, collaborator Collaborator, batch []CommunityInput) []EnrichedCommunity {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, within10s)
		defer cancel()
	}
	resp, err := collaborator.Chat(ctx, ChatRequest{Messages: []Message{
		{Role: "system", Content: "You label clusters of related source code symbols. Respond with a JSON array only."},
		{Role: "user", Content: buildPrompt(batch)},
	}})
	if err != nil {
		return heuristicFallback(batch)
	}

	parsed, err := parseResponse(resp.Message.Content)
	if err != nil || len(parsed) != len(batch) {
		return heuristicFallback(batch)
	}

	out := make([]EnrichedCommunity, len(batch))
	for i, c := range batch {
		out[i] = EnrichedCommunity{
			ID:          c.ID,
			Label:       parsed[i].Name,
			Keywords:    parsed[i].Keywords,
			Description: parsed[i].Description,
			FromLLM:     true,
		}
	}
	return out
}

// EnrichAll runs Enrich over every batch produced by Batches, in order, and
// flattens the results. Each batch gets its own collaborator call so one
// bad batch's fallback does not affect the rest.
func EnrichAll(ctx context.Context, collaborator Collaborator, communities []CommunityInput) []EnrichedCommunity {
	var out []EnrichedCommunity
	for _, batch := range Batches(communities) {
		out = append(out, Enrich(ctx, collaborator, batch)...)
	}
	return out
}

func heuristicFallback(batch []CommunityInput) []EnrichedCommunity {
	out := make([]EnrichedCommunity, len(batch))
	for i, c := range batch {
		out[i] = EnrichedCommunity{ID: c.ID, Label: c.HeuristicLabel}
	}
	return out
}

// buildPrompt describes every community in the batch by id, heuristic
// label, and truncated member list, asking for a matching-order JSON array
// reply.
func buildPrompt(batch []CommunityInput) string {
	var b strings.Builder
	b.WriteString("Label each of the following code communities. Reply with a JSON array of exactly ")
	fmt.Fprintf(&b, "%d objects, in the same order, each shaped like ", len(batch))
	b.WriteString(`{"name": "...", "keywords": ["..."], "description": "..."}.` + "\n\n")
	for i, c := range batch {
		fmt.Fprintf(&b, "%d. id=%s heuristic_label=%q members=%s\n", i+1, c.ID, c.HeuristicLabel, strings.Join(c.Members, ", "))
	}
	return b.String()
}

// collaboratorReply is the per-community shape the prompt asks for.
type collaboratorReply struct {
	Name        string   `json:"name"`
	Keywords    []string `json:"keywords"`
	Description string   `json:"description"`
}

// parseResponse extracts the JSON array from a (possibly prose-wrapped)
// collaborator reply.
func parseResponse(content string) ([]collaboratorReply, error) {
	start := strings.IndexByte(content, '[')
	end := strings.LastIndexByte(content, ']')
	if start < 0 || end < start {
		return nil, fmt.Errorf("enrich: no JSON array in response")
	}
	var out []collaboratorReply
	if err := json.Unmarshal([]byte(content[start:end+1]), &out); err != nil {
		return nil, err
	}
	return out, nil
}
