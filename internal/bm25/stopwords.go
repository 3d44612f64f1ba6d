package bm25

// stopWords is the fixed BM25 stop-word list: common language keywords
// plus common English function words.
var stopWords = buildStopWords()

func buildStopWords() map[string]bool {
	words := []string{
		// language keywords
		"const", "let", "var", "function", "return", "if", "else", "for",
		"while", "class", "new", "this", "import", "export", "from",
		"default", "async", "await", "try", "catch", "throw", "typeof",
		"instanceof", "true", "false", "null", "undefined",
		// English function words
		"the", "is", "at", "which", "on", "a", "an", "and", "or", "but",
		"in", "with", "to", "of", "it", "be", "as", "by", "that", "for",
		"are", "was", "were",
	}
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// IsStopWord reports whether term is in the fixed BM25 stop-word list.
func IsStopWord(term string) bool {
	return stopWords[term]
}
