package triage

import (
	"math"
	"sort"
)

// DefaultMaxFeatures caps the vocabulary size when none is configured.
const DefaultMaxFeatures = 1000

// SparseVector maps a vocabulary index to its weight.
type SparseVector map[int]float64

// Indices returns the populated feature indices in ascending order.
func (s SparseVector) Indices() []int {
	idx := make([]int, 0, len(s))
	for i := range s {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// Vectorizer turns free text into L2-normalised TF-IDF vectors over a
// fixed vocabulary. It is immutable after Fit and safe for concurrent use.
type Vectorizer struct {
	Vocabulary map[string]int `cbor:"vocabulary"`
	IDF        []float64      `cbor:"idf"`
}

// FitVectorizer builds the vocabulary and IDF weights from documents.
// The vocabulary keeps the maxFeatures terms with the highest corpus
// frequency; ties are broken alphabetically.
func FitVectorizer(documents []string, maxFeatures int) *Vectorizer {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}

	corpusFrequency := make(map[string]int)
	documentFrequency := make(map[string]int)
	for _, doc := range documents {
		seen := make(map[string]struct{})
		for _, term := range Tokenize(doc) {
			corpusFrequency[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				documentFrequency[term]++
			}
		}
	}

	terms := make([]string, 0, len(corpusFrequency))
	for term := range corpusFrequency {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if corpusFrequency[terms[i]] != corpusFrequency[terms[j]] {
			return corpusFrequency[terms[i]] > corpusFrequency[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	// Index order is alphabetical so the feature layout does not depend on frequency ranking.
	sort.Strings(terms)

	n := float64(len(documents))
	v := &Vectorizer{
		Vocabulary: make(map[string]int, len(terms)),
		IDF:        make([]float64, len(terms)),
	}
	for i, term := range terms {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(documentFrequency[term]))) + 1
	}
	return v
}

// Size returns the number of features.
func (v *Vectorizer) Size() int {
	return len(v.IDF)
}

// Transform vectorizes a single text. Out-of-vocabulary terms are ignored;
// text without known terms yields an empty vector.
func (v *Vectorizer) Transform(text string) SparseVector {
	counts := make(map[int]float64)
	for _, term := range Tokenize(text) {
		if idx, ok := v.Vocabulary[term]; ok {
			counts[idx]++
		}
	}

	vec := SparseVector(counts)
	var norm float64
	for _, idx := range vec.Indices() {
		w := vec[idx] * v.IDF[idx]
		vec[idx] = w
		norm += w * w
	}
	if norm == 0 {
		return SparseVector{}
	}
	norm = math.Sqrt(norm)
	for idx := range vec {
		vec[idx] /= norm
	}
	return vec
}
