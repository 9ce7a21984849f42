package triage

import (
	"errors"
	"math"
	"sort"
)

// DefaultAlpha is the additive (Laplace) smoothing constant.
const DefaultAlpha = 1.0

var (
	ErrEmptyTrainingSet = errors.New("training set is empty")
	ErrLabelMismatch    = errors.New("feature and label counts differ")
)

// NaiveBayes is a multinomial Naive Bayes classifier over TF-IDF features.
type NaiveBayes struct {
	Classes        []string    `cbor:"classes"`
	ClassLogPrior  []float64   `cbor:"class_log_prior"`
	FeatureLogProb [][]float64 `cbor:"feature_log_prob"`
	Alpha          float64     `cbor:"alpha"`
	NumFeatures    int         `cbor:"num_features"`
}

// FitNaiveBayes estimates class priors and smoothed feature likelihoods.
// Classes are stored in sorted order.
func FitNaiveBayes(features []SparseVector, labels []string, numFeatures int, alpha float64) (*NaiveBayes, error) {
	if len(features) == 0 {
		return nil, ErrEmptyTrainingSet
	}
	if len(features) != len(labels) {
		return nil, ErrLabelMismatch
	}
	if alpha <= 0 {
		alpha = DefaultAlpha
	}

	classCount := make(map[string]int)
	for _, label := range labels {
		classCount[label]++
	}
	classes := make([]string, 0, len(classCount))
	for label := range classCount {
		classes = append(classes, label)
	}
	sort.Strings(classes)
	classIndex := make(map[string]int, len(classes))
	for i, c := range classes {
		classIndex[c] = i
	}

	featureCount := make([][]float64, len(classes))
	for i := range featureCount {
		featureCount[i] = make([]float64, numFeatures)
	}
	for i, vec := range features {
		row := featureCount[classIndex[labels[i]]]
		for idx, w := range vec {
			row[idx] += w
		}
	}

	nb := &NaiveBayes{
		Classes:        classes,
		ClassLogPrior:  make([]float64, len(classes)),
		FeatureLogProb: make([][]float64, len(classes)),
		Alpha:          alpha,
		NumFeatures:    numFeatures,
	}
	total := float64(len(labels))
	for ci, class := range classes {
		nb.ClassLogPrior[ci] = math.Log(float64(classCount[class]) / total)

		var sum float64
		for _, fc := range featureCount[ci] {
			sum += fc
		}
		denom := math.Log(sum + alpha*float64(numFeatures))
		logProb := make([]float64, numFeatures)
		for fi, fc := range featureCount[ci] {
			logProb[fi] = math.Log(fc+alpha) - denom
		}
		nb.FeatureLogProb[ci] = logProb
	}
	return nb, nil
}

// Predict returns the class with the highest joint log likelihood.
// Ties resolve to the first class in sorted order.
func (nb *NaiveBayes) Predict(vec SparseVector) string {
	if len(nb.Classes) == 0 {
		return ""
	}
	best, bestScore := 0, math.Inf(-1)
	for ci := range nb.Classes {
		score := nb.jointLogLikelihood(ci, vec)
		if score > bestScore {
			best, bestScore = ci, score
		}
	}
	return nb.Classes[best]
}

func (nb *NaiveBayes) jointLogLikelihood(ci int, vec SparseVector) float64 {
	score := nb.ClassLogPrior[ci]
	logProb := nb.FeatureLogProb[ci]
	for _, idx := range vec.Indices() {
		w := vec[idx]
		if idx < 0 || idx >= len(logProb) {
			continue
		}
		score += w * logProb[idx]
	}
	return score
}
