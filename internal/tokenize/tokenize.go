// Package tokenize turns identifier and documentation text into normalized,
// stemmed, case-aware search terms.
package tokenize

import (
	"strings"
	"unicode"

	"github.com/surgebase/porter2"
)

// MinTokenLength is the shortest token indexed. Kept at 1 so short Rust
// types like u8, i32, io remain searchable.
const MinTokenLength = 1

// StopWords are common English words filtered out before stemming; they add
// little to search relevance given their frequency.
var StopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"that": true, "the": true, "to": true, "was": true, "will": true, "with": true,
}

// TokenizeAndStem splits text into searchable terms using a forward-sweep
// state machine that recognizes CamelCase, snake_case, and hyphen-case
// boundaries, then stems and stop-word-filters the result.
//
// Two pointers are tracked through the sweep: wordStart (the start of the
// complete compound word, e.g. "HttpServer") and subwordStart (the start of
// the current component, e.g. "Server"). Both the subword and the full
// compound are indexed, so "HttpServer" yields "http", "server", and
// "httpserver".
func TokenizeAndStem(text string) []string {
	var tokens []string

	var lastCase *bool // nil = non-alphabetic, pointer so we can compare to "unset"
	wordStart := 0
	subwordStart := 0
	wordStartNextChar := true
	subwordStartNextChar := true

	for i, c := range text {
		if wordStartNextChar {
			wordStart = i
			subwordStart = i
			wordStartNextChar = false
			subwordStartNextChar = false
		}
		if subwordStartNextChar {
			subwordStart = i
			subwordStartNextChar = false
		}

		var currentCase *bool
		if unicode.IsLetter(c) {
			upper := unicode.IsUpper(c)
			currentCase = &upper
		}
		caseChange := lastCase != nil && !*lastCase && currentCase != nil && *currentCase
		lastCase = currentCase

		switch {
		case c == '-' || c == '_':
			if i-subwordStart >= MinTokenLength {
				indexToken(text[subwordStart:i], &tokens)
			}
			subwordStartNextChar = true
		case !unicode.IsLetter(c):
			if i-subwordStart >= MinTokenLength && subwordStart != wordStart {
				indexToken(text[subwordStart:i], &tokens)
			}
			if i-wordStart >= MinTokenLength {
				indexToken(text[wordStart:i], &tokens)
			}
			wordStartNextChar = true
		case caseChange:
			if i-subwordStart >= MinTokenLength {
				indexToken(text[subwordStart:i], &tokens)
			}
			subwordStart = i
		}
	}

	if !wordStartNextChar {
		lastSubword := text[subwordStart:]
		if wordStart != subwordStart && len(lastSubword) >= MinTokenLength {
			indexToken(lastSubword, &tokens)
		}
		lastWord := text[wordStart:]
		if len(lastWord) >= MinTokenLength {
			indexToken(lastWord, &tokens)
		}
	}

	return tokens
}

// indexToken lowercases, stop-word filters, stems, and appends a token.
func indexToken(token string, tokens *[]string) {
	lowercase := strings.ToLower(token)
	if StopWords[lowercase] {
		return
	}
	*tokens = append(*tokens, porter2.Stem(lowercase))
}

// HashTerm hashes a term case-insensitively for inverted-index lookup.
func HashTerm(term string) uint64 {
	return termHash(strings.ToLower(term))
}
