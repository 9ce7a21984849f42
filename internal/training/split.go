package training

import (
	"math"
	"math/rand"
	"sort"
)

// DefaultTestSize is the fraction of each class held out for evaluation.
const DefaultTestSize = 0.2

// DefaultSeed makes the split reproducible when none is configured.
const DefaultSeed = 42

// StratifiedSplit partitions samples into train and test sets preserving
// per-category proportions. Every category with at least two samples is
// represented in both sets. The result depends only on the input order
// and seed.
func StratifiedSplit(samples []Sample, testSize float64, seed int64) (train, test []Sample) {
	if testSize <= 0 || testSize >= 1 {
		testSize = DefaultTestSize
	}
	rng := rand.New(rand.NewSource(seed))

	byLabel := make(map[string][]int)
	for i, s := range samples {
		byLabel[s.Category] = append(byLabel[s.Category], i)
	}
	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var trainIdx, testIdx []int
	for _, label := range labels {
		idx := byLabel[label]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		nTest := int(math.Round(float64(len(idx)) * testSize))
		if len(idx) >= 2 {
			nTest = max(1, min(nTest, len(idx)-1))
		} else {
			nTest = 0
		}
		testIdx = append(testIdx, idx[:nTest]...)
		trainIdx = append(trainIdx, idx[nTest:]...)
	}

	// Restore the input order so downstream fitting is order-stable.
	sort.Ints(trainIdx)
	sort.Ints(testIdx)
	train = make([]Sample, len(trainIdx))
	for i, idx := range trainIdx {
		train[i] = samples[idx]
	}
	test = make([]Sample, len(testIdx))
	for i, idx := range testIdx {
		test[i] = samples[idx]
	}
	return train, test
}
