// Package search implements a TF-IDF inverted index over crate
// documentation items, grounded on the same term-hash + doc-id-path
// shape as internal/tokenize.
package search

import (
	"sort"

	"rustdocmcp/internal/tokenize"
)

// DocID identifies a documentation item: (crateID, itemID).
type DocID struct {
	CrateID uint64
	ItemID  uint32
}

// Posting is one (document index, TF-IDF score) pair for a term. Exported
// so internal/store can (de)serialize an index without reaching into
// package-private fields.
type Posting struct {
	DocIndex int     `json:"doc_index"`
	Score    float32 `json:"score"`
}

// InvertedIndex is a searchable term index with TF-IDF scoring, built once
// per crate generation and queried many times.
type InvertedIndex struct {
	// terms maps a term hash to postings sorted by score descending.
	terms map[uint64][]Posting
	// ids maps a document index back to its id-path (crate root -> item).
	ids [][]uint32
}

// NewInvertedIndex wraps pre-computed terms and ids. Exported so
// persistence code (internal/store) can reconstruct an index from disk.
func NewInvertedIndex(terms map[uint64][]Posting, ids [][]uint32) *InvertedIndex {
	return &InvertedIndex{terms: terms, ids: ids}
}

// Terms returns the raw term-hash -> postings map for serialization.
func (idx *InvertedIndex) Terms() map[uint64][]Posting {
	return idx.terms
}

// IDs returns the raw document-index -> id-path slice for serialization.
func (idx *InvertedIndex) IDs() [][]uint32 {
	return idx.ids
}

// Match is one scored search result: the id-path to the matching item and
// its combined TF-IDF score across all query tokens.
type Match struct {
	IDPath []uint32
	Score  float32
}

// Search tokenizes and stems query exactly like indexed terms, combines
// scores across all matched tokens, and returns the top `limit` matches by
// combined score descending, breaking ties by lower document index.
func (idx *InvertedIndex) Search(query string, limit int) []Match {
	tokens := tokenize.TokenizeAndStem(query)
	if len(tokens) == 0 {
		return nil
	}

	combined := make(map[int]float32)
	for _, token := range tokens {
		termHash := tokenize.HashTerm(token)
		for _, p := range idx.terms[termHash] {
			combined[p.DocIndex] += p.Score
		}
	}

	type scored struct {
		docIndex int
		score    float32
	}
	results := make([]scored, 0, len(combined))
	for docIndex, score := range combined {
		results = append(results, scored{docIndex, score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].docIndex < results[j].docIndex
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{IDPath: idx.ids[r.docIndex], Score: r.score}
	}
	return matches
}

// TermCount returns the number of unique terms in the index.
func (idx *InvertedIndex) TermCount() int {
	return len(idx.terms)
}

// DocumentCount returns the number of documents in the index.
func (idx *InvertedIndex) DocumentCount() int {
	return len(idx.ids)
}
