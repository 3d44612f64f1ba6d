package bm25_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitnexus/gitnexus/internal/bm25"
)

func TestTokenizeSplitsCamelCase(t *testing.T) {
	tokens := bm25.Tokenize("getUserById", false)
	assert.Contains(t, tokens, "get")
	assert.Contains(t, tokens, "user")
	assert.NotContains(t, tokens, "by") // camel part, dropped as a stop word
	assert.Contains(t, tokens, "id")
	assert.Contains(t, tokens, "getuserbyid")
}

func TestTokenizeDropsStopWordsAndShortTokens(t *testing.T) {
	tokens := bm25.Tokenize("the a function is here", false)
	assert.NotContains(t, tokens, "the")
	assert.NotContains(t, tokens, "a")
	assert.NotContains(t, tokens, "function")
	assert.NotContains(t, tokens, "is")
	assert.Contains(t, tokens, "here")
}

func TestIndexSearchRanksNameBoostedMatch(t *testing.T) {
	idx := bm25.New(2.0, false)
	idx.Add("auth/login.ts", "login", "export function login() { checkCredentials(); }")
	idx.Add("billing/invoice.ts", "invoice", "export function invoice() { calculateTotal(); }")

	results := idx.Search("login", 10)
	require.NotEmpty(t, results)
	assert.Equal(t, "auth/login.ts", results[0].FilePath)
	assert.Equal(t, 0, results[0].Rank)
}

func TestIndexSearchPrefix(t *testing.T) {
	idx := bm25.New(2.0, false)
	idx.Add("a.ts", "authHandler", "export function authHandler() {}")
	idx.Add("b.ts", "billingHandler", "export function billingHandler() {}")

	results := idx.SearchPrefix("auth", 10)
	require.Len(t, results, 1)
	assert.Equal(t, "a.ts", results[0].FilePath)
}

func TestIndexSearchFuzzyToleratesTypo(t *testing.T) {
	idx := bm25.New(2.0, false)
	idx.Add("a.ts", "authenticate", "export function authenticate() {}")

	results := idx.SearchFuzzy("authentcate", 0.2, 10)
	assert.NotEmpty(t, results)
}

func TestIndexMarshalUnmarshalRoundTrip(t *testing.T) {
	idx := bm25.New(2.0, false)
	idx.Add("a.ts", "login", "export function login() {}")

	data, err := idx.Marshal()
	require.NoError(t, err)

	reloaded, err := bm25.Unmarshal(data)
	require.NoError(t, err)

	before := idx.Search("login", 5)
	after := reloaded.Search("login", 5)
	require.Len(t, before, 1)
	require.Len(t, after, 1)
	assert.Equal(t, before[0].FilePath, after[0].FilePath)
	assert.InDelta(t, before[0].Score, after[0].Score, 1e-9)
}
