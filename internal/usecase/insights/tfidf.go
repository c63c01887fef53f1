package insights

import (
	"math"
	"regexp"
	"strings"
)

// tokenPattern matches runs of two or more word characters
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// tfidfIndex is a TF-IDF model fitted on a fixed corpus: raw term counts,
// smoothed idf ln((1+n)/(1+df))+1 and l2-normalised rows.
type tfidfIndex struct {
	idf  map[string]float64
	docs []map[string]float64
}

func fitTFIDF(corpus []string) *tfidfIndex {
	df := make(map[string]int)
	counts := make([]map[string]int, len(corpus))
	for i, doc := range corpus {
		counts[i] = termCounts(doc)
		for term := range counts[i] {
			df[term]++
		}
	}

	n := float64(len(corpus))
	idx := &tfidfIndex{idf: make(map[string]float64, len(df))}
	for term, d := range df {
		idx.idf[term] = math.Log((1+n)/(1+float64(d))) + 1
	}
	for _, c := range counts {
		idx.docs = append(idx.docs, idx.weigh(c))
	}
	return idx
}

func termCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, tok := range tokenize(text) {
		counts[tok]++
	}
	return counts
}

// weigh applies idf to in-vocabulary counts and l2-normalises the row
func (idx *tfidfIndex) weigh(counts map[string]int) map[string]float64 {
	vec := make(map[string]float64, len(counts))
	var norm float64
	for term, c := range counts {
		idf, ok := idx.idf[term]
		if !ok {
			continue
		}
		w := float64(c) * idf
		vec[term] = w
		norm += w * w
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for term := range vec {
		vec[term] /= norm
	}
	return vec
}

// bestMatch returns the index and cosine similarity of the closest corpus
// document. Ties go to the earliest document.
func (idx *tfidfIndex) bestMatch(query string) (int, float64) {
	q := idx.weigh(termCounts(query))
	best, bestScore := 0, -1.0
	for i, doc := range idx.docs {
		var dot float64
		for term, w := range q {
			dot += w * doc[term]
		}
		if dot > bestScore {
			best, bestScore = i, dot
		}
	}
	if bestScore < 0 {
		bestScore = 0
	}
	return best, bestScore
}
