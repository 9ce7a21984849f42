package training

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/helpdesk-tools/ticket-triage/internal/triage"
)

var (
	ErrDatasetNotFound = errors.New("training data not found")
	ErrMissingColumn   = errors.New("training data missing required column")
	ErrTooFewClasses   = errors.New("training data needs at least two categories")
)

var requiredColumns = []string{"title", "description", "category"}

// Sample is one labeled ticket used for training or evaluation.
type Sample struct {
	Title       string
	Description string
	Category    string
}

// Text returns the combined text the classifier is trained on.
func (s Sample) Text() string {
	return triage.CombineText(s.Title, s.Description)
}

// LoadDataset reads labeled tickets from a CSV file with a header row.
func LoadDataset(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, path)
		}
		return nil, err
	}
	defer f.Close()
	return ReadDataset(f)
}

// ReadDataset parses CSV with at least title, description and category
// columns. Other columns are ignored, as are rows without a category.
func ReadDataset(r io.Reader) ([]Sample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	field := func(record []string, col string) string {
		i := index[col]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var samples []Sample
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		sample := Sample{
			Title:       field(record, "title"),
			Description: field(record, "description"),
			Category:    field(record, "category"),
		}
		if sample.Category == "" {
			continue
		}
		samples = append(samples, sample)
	}
	return samples, nil
}
