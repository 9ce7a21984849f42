// Package triage predicts a ticket's category with a TF-IDF + multinomial
// Naive Bayes model and its priority with an ordered keyword heuristic.
package triage

import (
	"errors"
	"os"

	"go.uber.org/zap"
)

// Uncategorized is returned as the category when no model is loaded.
const Uncategorized = "uncategorized"

// Classifier predicts a category label for ticket text.
type Classifier interface {
	Predict(text string) string
}

// Result is the outcome of triaging one ticket.
type Result struct {
	Category string   `json:"category"`
	Priority Priority `json:"priority"`
}

// Triager combines the category classifier and the priority heuristic.
// The classifier is set once at construction and never mutated, so a
// Triager may be shared across goroutines.
type Triager struct {
	classifier Classifier
}

// NewTriager wraps an already fitted classifier. A nil classifier puts the
// triager in fallback mode.
func NewTriager(classifier Classifier) *Triager {
	return &Triager{classifier: classifier}
}

// LoadTriager reads the model artifact at path. Failure to load is never
// fatal: it is logged and category prediction falls back to Uncategorized.
func LoadTriager(path string, logger *zap.Logger) *Triager {
	if logger == nil {
		logger = zap.NewNop()
	}
	model, err := LoadModel(path)
	switch {
	case err == nil:
		logger.Info("triage model loaded",
			zap.String("path", path),
			zap.Strings("categories", model.Labels()),
			zap.Int("features", model.Vectorizer.Size()))
		return NewTriager(model)
	case errors.Is(err, os.ErrNotExist):
		logger.Warn("triage model not found; categories will be uncategorized", zap.String("path", path))
	default:
		logger.Error("triage model unreadable; categories will be uncategorized", zap.String("path", path), zap.Error(err))
	}
	return NewTriager(nil)
}

// ModelVersion identifies the loaded model, "none" when in fallback mode.
func (t *Triager) ModelVersion() string {
	if !t.Ready() {
		return "none"
	}
	if v, ok := t.classifier.(interface{ Version() string }); ok {
		return v.Version()
	}
	return "unversioned"
}

// Ready reports whether a category model is available.
func (t *Triager) Ready() bool {
	return t != nil && t.classifier != nil
}

// PredictCategory returns the predicted category, or Uncategorized when no
// model is loaded.
func (t *Triager) PredictCategory(text string) string {
	if !t.Ready() {
		return Uncategorized
	}
	category := t.classifier.Predict(text)
	if category == "" {
		return Uncategorized
	}
	return category
}

// PredictPriority applies the keyword heuristic.
func (t *Triager) PredictPriority(text string) Priority {
	return PredictPriority(text)
}

// Triage predicts category and priority independently from the title and
// description joined by a single space.
func (t *Triager) Triage(title, description string) Result {
	text := CombineText(title, description)
	return Result{
		Category: t.PredictCategory(text),
		Priority: t.PredictPriority(text),
	}
}

// CombineText joins title and description the way training and triage expect.
func CombineText(title, description string) string {
	return title + " " + description
}
