// Package training fits, evaluates and serializes the category model.
package training

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/helpdesk-tools/ticket-triage/internal/triage"
)

// Options configures one training run.
type Options struct {
	DataPath    string
	ModelPath   string
	MaxFeatures int
	Alpha       float64
	TestSize    float64
	Seed        int64
}

// Outcome describes a completed training run.
type Outcome struct {
	TrainSize int
	TestSize  int
	Report    Report
	Model     *triage.Model
	ModelPath string
	Duration  time.Duration
}

// Trainer runs the one-shot fit/evaluate/serialize pipeline.
type Trainer struct {
	logger *zap.Logger
}

// NewTrainer constructs a Trainer.
func NewTrainer(logger *zap.Logger) *Trainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trainer{logger: logger}
}

// Run loads the dataset, fits on a stratified split, evaluates on the
// held-out part and writes the artifact. Nothing is written when loading
// or fitting fails. An empty ModelPath skips serialization.
func (t *Trainer) Run(ctx context.Context, opts Options) (*Outcome, error) {
	started := time.Now()

	samples, err := LoadDataset(opts.DataPath)
	if err != nil {
		return nil, err
	}
	t.logger.Info("loaded training data", zap.String("path", opts.DataPath), zap.Int("tickets", len(samples)))

	outcome, err := t.Fit(ctx, samples, opts)
	if err != nil {
		return nil, err
	}

	if opts.ModelPath != "" {
		if err := triage.SaveModel(opts.ModelPath, outcome.Model); err != nil {
			return nil, fmt.Errorf("save model: %w", err)
		}
		outcome.ModelPath = opts.ModelPath
		t.logger.Info("model saved", zap.String("path", opts.ModelPath))
	}
	outcome.Duration = time.Since(started)
	return outcome, nil
}

// Fit splits samples, trains on the training part and evaluates on the rest.
func (t *Trainer) Fit(ctx context.Context, samples []Sample, opts Options) (*Outcome, error) {
	if countLabels(samples) < 2 {
		return nil, ErrTooFewClasses
	}
	if opts.TestSize == 0 {
		opts.TestSize = DefaultTestSize
	}

	train, test := StratifiedSplit(samples, opts.TestSize, opts.Seed)
	t.logger.Info("split dataset", zap.Int("train", len(train)), zap.Int("test", len(test)), zap.Int64("seed", opts.Seed))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	texts := make([]string, len(train))
	labels := make([]string, len(train))
	for i, s := range train {
		texts[i] = s.Text()
		labels[i] = s.Category
	}
	model, err := triage.Fit(texts, labels, opts.MaxFeatures, opts.Alpha)
	if err != nil {
		return nil, fmt.Errorf("fit model: %w", err)
	}
	t.logger.Info("model fitted",
		zap.Int("features", model.Vectorizer.Size()),
		zap.Strings("categories", model.Labels()))

	report := Evaluate(model, test)
	t.logger.Info("model evaluated", zap.Float64("accuracy", report.Accuracy), zap.Int("test", report.Total))

	return &Outcome{
		TrainSize: len(train),
		TestSize:  len(test),
		Report:    report,
		Model:     model,
	}, nil
}

func countLabels(samples []Sample) int {
	seen := make(map[string]struct{})
	for _, s := range samples {
		seen[s.Category] = struct{}{}
	}
	return len(seen)
}
