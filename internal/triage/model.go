package triage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
)

// artifactFormat identifies the payload layout inside the compressed blob.
const artifactFormat = "triage-nb/1"

var encMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// ErrInvalidModel is returned when an artifact cannot be decoded or is incomplete.
var ErrInvalidModel = errors.New("invalid model artifact")

// Model is the fitted vectorizer and classifier pair produced by training.
type Model struct {
	Format     string      `cbor:"format"`
	TrainedAt  time.Time   `cbor:"trained_at"`
	Vectorizer *Vectorizer `cbor:"vectorizer"`
	Classifier *NaiveBayes `cbor:"classifier"`
}

// NewModel pairs a fitted vectorizer and classifier.
func NewModel(vectorizer *Vectorizer, classifier *NaiveBayes) *Model {
	return &Model{
		Format:     artifactFormat,
		TrainedAt:  time.Now().UTC(),
		Vectorizer: vectorizer,
		Classifier: classifier,
	}
}

// Fit trains a model on parallel slices of texts and labels.
func Fit(texts, labels []string, maxFeatures int, alpha float64) (*Model, error) {
	if len(texts) != len(labels) {
		return nil, ErrLabelMismatch
	}
	vectorizer := FitVectorizer(texts, maxFeatures)
	features := make([]SparseVector, len(texts))
	for i, text := range texts {
		features[i] = vectorizer.Transform(text)
	}
	classifier, err := FitNaiveBayes(features, labels, vectorizer.Size(), alpha)
	if err != nil {
		return nil, err
	}
	return NewModel(vectorizer, classifier), nil
}

// Predict vectorizes text and returns the predicted category label.
func (m *Model) Predict(text string) string {
	return m.Classifier.Predict(m.Vectorizer.Transform(text))
}

// Version identifies this artifact; it changes whenever the model is retrained.
func (m *Model) Version() string {
	return m.Format + "@" + m.TrainedAt.UTC().Format(time.RFC3339Nano)
}

// Labels returns the categories the classifier can emit.
func (m *Model) Labels() []string {
	return append([]string(nil), m.Classifier.Classes...)
}

// Encode writes the compressed artifact to w.
func (m *Model) Encode(w io.Writer) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	if err := encMode.NewEncoder(enc).Encode(m); err != nil {
		_ = enc.Close()
		return fmt.Errorf("encode model: %w", err)
	}
	return enc.Close()
}

// DecodeModel reads an artifact previously written by Encode.
func DecodeModel(r io.Reader) (*Model, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	defer dec.Close()

	var m Model
	if err := cbor.NewDecoder(dec).Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Model) validate() error {
	if m.Format != artifactFormat {
		return fmt.Errorf("%w: unexpected format %q", ErrInvalidModel, m.Format)
	}
	if m.Vectorizer == nil || m.Classifier == nil || len(m.Classifier.Classes) == 0 {
		return fmt.Errorf("%w: missing vectorizer or classifier", ErrInvalidModel)
	}
	if len(m.Classifier.FeatureLogProb) != len(m.Classifier.Classes) ||
		len(m.Classifier.ClassLogPrior) != len(m.Classifier.Classes) {
		return fmt.Errorf("%w: class tables out of shape", ErrInvalidModel)
	}
	features := len(m.Vectorizer.IDF)
	for term, idx := range m.Vectorizer.Vocabulary {
		if idx < 0 || idx >= features {
			return fmt.Errorf("%w: term %q maps to feature %d of %d", ErrInvalidModel, term, idx, features)
		}
	}
	if m.Classifier.NumFeatures != features {
		return fmt.Errorf("%w: classifier expects %d features, vectorizer has %d", ErrInvalidModel, m.Classifier.NumFeatures, features)
	}
	for ci, row := range m.Classifier.FeatureLogProb {
		if len(row) != features {
			return fmt.Errorf("%w: class %q has %d feature weights, want %d", ErrInvalidModel, m.Classifier.Classes[ci], len(row), features)
		}
	}
	return nil
}

// SaveModel writes the artifact to path, creating parent directories.
func SaveModel(path string, m *Model) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create model dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	if err := m.Encode(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// LoadModel reads the artifact at path. A missing file surfaces as an
// error wrapping os.ErrNotExist.
func LoadModel(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeModel(f)
}
