package triage

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trainingTexts = []string{
	"VPN connection keeps dropping network",
	"WiFi network unreachable in conference room",
	"network printer offline cannot connect",
	"laptop screen flickering hardware",
	"keyboard keys stopped responding hardware",
	"monitor display not detected hardware",
	"password reset request account locked",
	"account login locked after attempts",
	"need access permission account setup",
}

var trainingLabels = []string{
	"network", "network", "network",
	"hardware", "hardware", "hardware",
	"account", "account", "account",
}

func TestTokenize(t *testing.T) {
	t.Run("lowercases and drops stop words", func(t *testing.T) {
		assert.Equal(t, []string{"vpn", "keeps", "dropping"}, Tokenize("The VPN keeps DROPPING"))
	})

	t.Run("single characters ignored", func(t *testing.T) {
		assert.Equal(t, []string{"room"}, Tokenize("a b c room"))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Tokenize(""))
	})
}

func TestFitVectorizer(t *testing.T) {
	docs := []string{"printer jam printer", "printer offline", "screen offline"}

	t.Run("vocabulary is alphabetical", func(t *testing.T) {
		v := FitVectorizer(docs, 0)
		assert.Equal(t, map[string]int{"jam": 0, "offline": 1, "printer": 2, "screen": 3}, v.Vocabulary)
	})

	t.Run("cap keeps most frequent terms", func(t *testing.T) {
		v := FitVectorizer(docs, 2)
		assert.Equal(t, 2, v.Size())
		assert.Contains(t, v.Vocabulary, "printer")
		assert.Contains(t, v.Vocabulary, "offline")
	})

	t.Run("smoothed idf", func(t *testing.T) {
		v := FitVectorizer(docs, 0)
		assert.InDelta(t, math.Log(4.0/3.0)+1, v.IDF[v.Vocabulary["printer"]], 1e-12)
		assert.InDelta(t, math.Log(4.0/2.0)+1, v.IDF[v.Vocabulary["jam"]], 1e-12)
	})

	t.Run("transform is l2 normalised", func(t *testing.T) {
		v := FitVectorizer(docs, 0)
		vec := v.Transform("printer jam unknownword")
		var norm float64
		for _, w := range vec {
			norm += w * w
		}
		assert.InDelta(t, 1.0, norm, 1e-12)
		assert.Len(t, vec, 2)
	})

	t.Run("unknown text gives empty vector", func(t *testing.T) {
		v := FitVectorizer(docs, 0)
		assert.Empty(t, v.Transform("zebra giraffe"))
		assert.Empty(t, v.Transform(""))
	})
}

func TestFitNaiveBayes(t *testing.T) {
	t.Run("empty set", func(t *testing.T) {
		_, err := FitNaiveBayes(nil, nil, 3, 1)
		assert.ErrorIs(t, err, ErrEmptyTrainingSet)
	})

	t.Run("label mismatch", func(t *testing.T) {
		_, err := FitNaiveBayes([]SparseVector{{0: 1}}, []string{"a", "b"}, 1, 1)
		assert.ErrorIs(t, err, ErrLabelMismatch)
	})

	t.Run("priors and likelihoods", func(t *testing.T) {
		features := []SparseVector{{0: 1}, {0: 1}, {1: 1}}
		nb, err := FitNaiveBayes(features, []string{"b", "b", "a"}, 2, 1)
		require.NoError(t, err)

		assert.Equal(t, []string{"a", "b"}, nb.Classes)
		assert.InDelta(t, math.Log(1.0/3.0), nb.ClassLogPrior[0], 1e-12)
		assert.InDelta(t, math.Log(2.0/3.0), nb.ClassLogPrior[1], 1e-12)
		// class b: counts [2,0], alpha 1, |V| 2 -> (2+1)/(2+2), (0+1)/(2+2)
		assert.InDelta(t, math.Log(3.0/4.0), nb.FeatureLogProb[1][0], 1e-12)
		assert.InDelta(t, math.Log(1.0/4.0), nb.FeatureLogProb[1][1], 1e-12)
	})

	t.Run("empty vector falls back to prior", func(t *testing.T) {
		features := []SparseVector{{0: 1}, {0: 1}, {1: 1}}
		nb, err := FitNaiveBayes(features, []string{"b", "b", "a"}, 2, 1)
		require.NoError(t, err)
		assert.Equal(t, "b", nb.Predict(SparseVector{}))
	})
}

func TestModelPredict(t *testing.T) {
	model, err := Fit(trainingTexts, trainingLabels, 1000, 1.0)
	require.NoError(t, err)

	assert.Equal(t, "network", model.Predict("my vpn network keeps dropping"))
	assert.Equal(t, "hardware", model.Predict("the monitor screen is flickering"))
	assert.Equal(t, "account", model.Predict("locked out of my account password"))
	assert.Equal(t, []string{"account", "hardware", "network"}, model.Labels())

	first := model.Predict("printer offline in conference room")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, model.Predict("printer offline in conference room"))
	}
}

func TestModelArtifact(t *testing.T) {
	model, err := Fit(trainingTexts, trainingLabels, 1000, 1.0)
	require.NoError(t, err)

	t.Run("save and load preserve predictions", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "models", "triage_model.bin")
		require.NoError(t, SaveModel(path, model))

		loaded, err := LoadModel(path)
		require.NoError(t, err)
		for _, text := range []string{"vpn dropping", "keyboard broken", "password reset", ""} {
			assert.Equal(t, model.Predict(text), loaded.Predict(text))
		}
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := DecodeModel(bytes.NewReader([]byte("not a model")))
		assert.ErrorIs(t, err, ErrInvalidModel)
	})

	t.Run("wrong format is rejected", func(t *testing.T) {
		other := *model
		other.Format = "something-else"
		var buf bytes.Buffer
		require.NoError(t, other.Encode(&buf))

		_, err := DecodeModel(&buf)
		assert.ErrorIs(t, err, ErrInvalidModel)
	})

	t.Run("misshapen tables are rejected", func(t *testing.T) {
		truncatedIDF := func(m *Model) {
			m.Vectorizer = &Vectorizer{Vocabulary: m.Vectorizer.Vocabulary, IDF: m.Vectorizer.IDF[:1]}
		}
		shortRow := func(m *Model) {
			rows := append([][]float64(nil), m.Classifier.FeatureLogProb...)
			rows[0] = rows[0][:len(rows[0])-1]
			nb := *m.Classifier
			nb.FeatureLogProb = rows
			m.Classifier = &nb
		}
		wrongCount := func(m *Model) {
			nb := *m.Classifier
			nb.NumFeatures++
			m.Classifier = &nb
		}
		for name, mutate := range map[string]func(*Model){
			"truncated idf":     truncatedIDF,
			"short class row":   shortRow,
			"feature count off": wrongCount,
		} {
			t.Run(name, func(t *testing.T) {
				broken := *model
				mutate(&broken)
				var buf bytes.Buffer
				require.NoError(t, broken.Encode(&buf))

				_, err := DecodeModel(&buf)
				assert.ErrorIs(t, err, ErrInvalidModel)
			})
		}
	})
}
