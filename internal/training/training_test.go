package training

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/helpdesk-tools/ticket-triage/internal/synthetic"
	"github.com/helpdesk-tools/ticket-triage/internal/triage"
)

func writeSyntheticCSV(t *testing.T, n int) string {
	t.Helper()
	now := func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	path := filepath.Join(t.TempDir(), "tickets.csv")
	require.NoError(t, synthetic.WriteCSVFile(path, synthetic.NewGenerator(11, now).Generate(n)))
	return path
}

func TestReadDataset(t *testing.T) {
	t.Run("ignores extra columns and unlabeled rows", func(t *testing.T) {
		input := "id,Title,description,category,priority\n" +
			"1,VPN down,cannot connect,network,high\n" +
			"2,No label,missing category,,low\n" +
			"3,\"Printer, jammed\",paper stuck,hardware,low\n"

		samples, err := ReadDataset(strings.NewReader(input))
		require.NoError(t, err)
		assert.Equal(t, []Sample{
			{Title: "VPN down", Description: "cannot connect", Category: "network"},
			{Title: "Printer, jammed", Description: "paper stuck", Category: "hardware"},
		}, samples)
		assert.Equal(t, "VPN down cannot connect", samples[0].Text())
	})

	t.Run("missing required column", func(t *testing.T) {
		_, err := ReadDataset(strings.NewReader("title,category\nx,y\n"))
		assert.ErrorIs(t, err, ErrMissingColumn)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ReadDataset(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrMissingColumn)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadDataset(filepath.Join(t.TempDir(), "nope.csv"))
		assert.ErrorIs(t, err, ErrDatasetNotFound)
	})
}

func TestStratifiedSplit(t *testing.T) {
	var samples []Sample
	for i := 0; i < 10; i++ {
		samples = append(samples, Sample{Title: fmt.Sprintf("a%d", i), Category: "a"})
	}
	for i := 0; i < 5; i++ {
		samples = append(samples, Sample{Title: fmt.Sprintf("b%d", i), Category: "b"})
	}
	samples = append(samples, Sample{Title: "c0", Category: "c"}, Sample{Title: "c1", Category: "c"})

	train, test := StratifiedSplit(samples, 0.2, 42)

	count := func(set []Sample, label string) int {
		n := 0
		for _, s := range set {
			if s.Category == label {
				n++
			}
		}
		return n
	}
	assert.Len(t, append(train, test...), len(samples))
	assert.Equal(t, 2, count(test, "a"))
	assert.Equal(t, 1, count(test, "b"))
	assert.Equal(t, 1, count(test, "c"))
	assert.Equal(t, 1, count(train, "c"))

	train2, test2 := StratifiedSplit(samples, 0.2, 42)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)
}

func TestStratifiedSplit_SingletonStaysInTrain(t *testing.T) {
	samples := []Sample{{Category: "a"}, {Category: "a"}, {Category: "lonely"}}
	train, test := StratifiedSplit(samples, 0.5, 1)
	assert.Len(t, test, 1)
	assert.Contains(t, train, Sample{Category: "lonely"})
}

func TestComputeReport(t *testing.T) {
	actual := []string{"a", "a", "b", "b"}
	predicted := []string{"a", "b", "b", "b"}

	report := ComputeReport(actual, predicted)

	assert.InDelta(t, 0.75, report.Accuracy, 1e-12)
	require.Len(t, report.Classes, 2)
	assert.Equal(t, ClassMetrics{Label: "a", Precision: 1, Recall: 0.5, F1: 2.0 / 3.0, Support: 2}, report.Classes[0])
	assert.InDelta(t, 2.0/3.0, report.Classes[1].Precision, 1e-12)
	assert.InDelta(t, 1.0, report.Classes[1].Recall, 1e-12)
	assert.InDelta(t, (1+2.0/3.0)/2, report.MacroAvg.Precision, 1e-12)
	assert.Equal(t, 4, report.WeightedAvg.Support)
	assert.Contains(t, report.String(), "Accuracy: 0.7500")
	assert.Contains(t, report.String(), "weighted avg")
}

func TestComputeReport_Empty(t *testing.T) {
	report := ComputeReport(nil, nil)
	assert.Zero(t, report.Accuracy)
	assert.Empty(t, report.Classes)
}

func TestTrainer_Run(t *testing.T) {
	dataPath := writeSyntheticCSV(t, 400)
	modelPath := filepath.Join(t.TempDir(), "models", "triage_model.bin")
	opts := Options{DataPath: dataPath, ModelPath: modelPath, MaxFeatures: 1000, Alpha: 1.0, TestSize: 0.2, Seed: 42}

	outcome, err := NewTrainer(zap.NewNop()).Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 400, outcome.TrainSize+outcome.TestSize)
	assert.InDelta(t, 80, outcome.TestSize, 3)
	assert.Greater(t, outcome.Report.Accuracy, 0.9)
	assert.Equal(t, synthetic.Categories(), outcome.Model.Labels())
	assert.FileExists(t, modelPath)

	again, err := NewTrainer(nil).Run(context.Background(), Options{DataPath: dataPath, MaxFeatures: 1000, Alpha: 1.0, TestSize: 0.2, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, outcome.Report.Accuracy, again.Report.Accuracy)

	triager := triage.LoadTriager(modelPath, zap.NewNop())
	assert.Equal(t, "account", triager.PredictCategory("Password reset request I forgot my password and need to reset it."))
}

func TestTrainer_MissingData(t *testing.T) {
	modelPath := filepath.Join(t.TempDir(), "model.bin")
	_, err := NewTrainer(nil).Run(context.Background(), Options{
		DataPath:  filepath.Join(t.TempDir(), "absent.csv"),
		ModelPath: modelPath,
	})

	assert.ErrorIs(t, err, ErrDatasetNotFound)
	_, statErr := os.Stat(modelPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestTrainer_TooFewClasses(t *testing.T) {
	samples := []Sample{{Title: "x", Category: "only"}, {Title: "y", Category: "only"}}
	_, err := NewTrainer(nil).Fit(context.Background(), samples, Options{})
	assert.ErrorIs(t, err, ErrTooFewClasses)
}

func TestTrainer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	samples := []Sample{{Title: "x", Category: "a"}, {Title: "y", Category: "b"}}
	_, err := NewTrainer(nil).Fit(ctx, samples, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
