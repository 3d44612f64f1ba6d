// Package bm25 implements the BM25 Indexer: a custom camel/snake-aware
// tokenizer, BM25 ranking over a (content, name) document pair with the
// name field boosted, and prefix/fuzzy search.
package bm25

import (
	"strings"
	"unicode"

	"github.com/surgebase/porter2"
)

// isSplitRune reports whether r is in the fixed character class tokens are
// cut on.
func isSplitRune(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '-', '_', '.', '/', '\\',
		'(', ')', '{', '}', '[', ']', '<', '>', ':', ';', ',', '!', '?', '\'', '"':
		return true
	}
	return unicode.IsSpace(r)
}

// Tokenize lowercases text, splits on the fixed class, further splits each
// resulting token on camelCase boundaries (emitting both the parts and the
// original when the split produced more than one piece), and drops empty
// tokens, length-1 tokens, and stop words. When stem is
// true, surviving tokens are additionally reduced via the Porter2 stemmer
// (gated behind Config.Search.Stemming; off by default so the literal
// tokenizer is unaffected).
func Tokenize(text string, stem bool) []string {
	raw := strings.FieldsFunc(text, isSplitRune)
	out := make([]string, 0, len(raw)*2)
	for _, tok := range raw {
		lower := strings.ToLower(tok)
		parts := splitCamel(tok)
		if len(parts) > 1 {
			for _, p := range parts {
				out = append(out, strings.ToLower(p))
			}
			out = append(out, lower)
		} else {
			out = append(out, lower)
		}
	}

	final := make([]string, 0, len(out))
	for _, tok := range out {
		if len(tok) <= 1 {
			continue
		}
		if IsStopWord(tok) {
			continue
		}
		if stem {
			tok = porter2.Stem(tok)
		}
		final = append(final, tok)
	}
	return final
}

// splitCamel splits getUserById -> [get, User, By, Id] (case is kept;
// Tokenize lowercases the parts), treating a run of uppercase letters
// followed by a lowercase letter as starting a new word (so HTTPServer ->
// [HTTP, Server]) and digits as their own boundary.
func splitCamel(s string) []string {
	runes := []rune(s)
	if len(runes) == 0 {
		return nil
	}
	var parts []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			parts = append(parts, string(cur))
			cur = nil
		}
	}
	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if len(cur) > 0 {
				prevLower := unicode.IsLower(runes[i-1])
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
					flush()
				}
			}
			cur = append(cur, r)
		case unicode.IsDigit(r):
			if len(cur) > 0 && !unicode.IsDigit(runes[i-1]) {
				flush()
			}
			cur = append(cur, r)
		default:
			if len(cur) > 0 && unicode.IsDigit(runes[i-1]) {
				flush()
			}
			cur = append(cur, r)
		}
	}
	flush()
	return parts
}
