package search

import (
	"math"
	"sort"

	"rustdocmcp/internal/tokenize"
)

// Node is the minimal surface TermBuilder needs from a crate-graph item:
// an identity, its own name and doc comment, and a way to enumerate
// indexable children. internal/item's Ref implements this.
type Node interface {
	DocID() DocID
	Name() (string, bool)
	DocComment() (string, bool)
	// Children returns the items to recurse into, and whether each one's
	// id-path should be tracked (methods on a struct/trait are indexed
	// but not path-tracked, matching the original's `track_path` flag).
	Children() []NodeChild
}

// NodeChild pairs a child Node with whether its id-path should be tracked.
type NodeChild struct {
	Node      Node
	TrackPath bool
}

// TermBuilder accumulates term frequencies across a crate's item tree
// before TF-IDF finalization. Not safe for concurrent use; one builder
// generates one crate's index.
type TermBuilder struct {
	// termDocs maps (termHash, docID) -> accumulated raw TF score.
	termDocs map[termDocKey]float32
	// shortestPaths maps docID -> id-path from crate root to item.
	shortestPaths map[DocID][]uint32
	// docLengths maps docID -> total term count, for length normalization.
	docLengths map[DocID]int
}

type termDocKey struct {
	termHash uint64
	doc      DocID
}

// NewTermBuilder returns an empty builder.
func NewTermBuilder() *TermBuilder {
	return &TermBuilder{
		termDocs:      make(map[termDocKey]float32),
		shortestPaths: make(map[DocID][]uint32),
		docLengths:    make(map[DocID]int),
	}
}

// add accumulates a raw TF score for a term in a document.
func (b *TermBuilder) add(term string, tfScore float32, doc DocID) {
	key := termDocKey{tokenize.HashTerm(term), doc}
	b.termDocs[key] += tfScore
}

// addTerms tokenizes text, counts word frequencies, and accumulates a raw
// TF score per word: count * baseScore, where baseScore weights a term's
// importance (2.0 for names, 1.0 for doc comments).
func (b *TermBuilder) addTerms(text string, doc DocID, baseScore float32) {
	words := tokenize.TokenizeAndStem(text)

	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
	}

	docLen := 0
	for _, c := range counts {
		docLen += c
	}
	b.docLengths[doc] += docLen

	for word, count := range counts {
		b.add(word, float32(count)*baseScore, doc)
	}
}

// Recurse walks an item and its children, indexing names (base score 2.0)
// and doc comments (base score 1.0), and tracking the shortest id-path
// to each document.
func (b *TermBuilder) Recurse(item Node, path []uint32, trackPath bool) {
	doc := item.DocID()

	newPath := append([]uint32(nil), path...)
	if trackPath {
		newPath = append(newPath, doc.ItemID)
		if _, ok := b.shortestPaths[doc]; !ok {
			b.shortestPaths[doc] = newPath
		}
	}

	if name, ok := item.Name(); ok {
		b.addTerms(name, doc, 2.0)
	}
	if docs, ok := item.DocComment(); ok {
		b.addTerms(docs, doc, 1.0)
	}

	for _, child := range item.Children() {
		b.Recurse(child.Node, newPath, child.TrackPath)
	}
}

// Finalize computes IDF scores and TF-IDF-normalized postings, producing
// the final searchable index.
//
// TF-IDF = (1 + ln(tf_normalized)) * ln(total_docs / doc_freq), where
// tf_normalized = tf_score / length_norm, and length_norm is the
// document's length relative to the average, clamped to 0.5 minimum to
// avoid over-penalizing very short documents.
func (b *TermBuilder) Finalize() *InvertedIndex {
	totalDocs := float64(len(b.shortestPaths))

	totalLength := 0
	for _, l := range b.docLengths {
		totalLength += l
	}
	avgDocLength := 1.0
	if len(b.docLengths) > 0 {
		avgDocLength = float64(totalLength) / float64(len(b.docLengths))
	}

	type docPath struct {
		doc  DocID
		path []uint32
	}
	sortedPaths := make([]docPath, 0, len(b.shortestPaths))
	for doc, path := range b.shortestPaths {
		sortedPaths = append(sortedPaths, docPath{doc, path})
	}
	sort.Slice(sortedPaths, func(i, j int) bool {
		if sortedPaths[i].doc.CrateID != sortedPaths[j].doc.CrateID {
			return sortedPaths[i].doc.CrateID < sortedPaths[j].doc.CrateID
		}
		return sortedPaths[i].doc.ItemID < sortedPaths[j].doc.ItemID
	})

	idSet := make(map[DocID]int, len(sortedPaths))
	ids := make([][]uint32, 0, len(sortedPaths))
	for _, dp := range sortedPaths {
		idSet[dp.doc] = len(ids)
		ids = append(ids, dp.path)
	}

	grouped := make(map[uint64][]struct {
		doc   DocID
		score float32
	})
	for key, score := range b.termDocs {
		grouped[key.termHash] = append(grouped[key.termHash], struct {
			doc   DocID
			score float32
		}{key.doc, score})
	}

	terms := make(map[uint64][]Posting, len(grouped))
	for termHash, docScores := range grouped {
		docFreq := float64(len(docScores))
		idf := math.Log(totalDocs / docFreq)

		scored := make([]Posting, 0, len(docScores))
		for _, ds := range docScores {
			docLength := float64(b.docLengths[ds.doc])
			if docLength == 0 {
				docLength = 1
			}
			lengthNorm := docLength / avgDocLength
			if lengthNorm < 0.5 {
				lengthNorm = 0.5
			}
			tfNormalized := float64(ds.score) / lengthNorm

			idx, ok := idSet[ds.doc]
			if !ok {
				continue
			}
			scored = append(scored, Posting{
				DocIndex: idx,
				Score:    float32((1.0 + math.Log(tfNormalized)) * idf),
			})
		}

		sort.Slice(scored, func(i, j int) bool {
			return scored[i].Score > scored[j].Score
		})
		terms[termHash] = scored
	}

	return NewInvertedIndex(terms, ids)
}
