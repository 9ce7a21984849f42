package training

import (
	"fmt"
	"sort"
	"strings"

	"github.com/helpdesk-tools/ticket-triage/internal/triage"
)

// ClassMetrics holds precision, recall and F1 for one category.
type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report summarises classifier performance on a held-out set.
type Report struct {
	Accuracy    float64        `json:"accuracy"`
	Classes     []ClassMetrics `json:"classes"`
	MacroAvg    ClassMetrics   `json:"macro_avg"`
	WeightedAvg ClassMetrics   `json:"weighted_avg"`
	Total       int            `json:"total"`
}

// Evaluate predicts every test sample and computes accuracy and per-class metrics.
func Evaluate(classifier triage.Classifier, test []Sample) Report {
	actual := make([]string, len(test))
	predicted := make([]string, len(test))
	for i, s := range test {
		actual[i] = s.Category
		predicted[i] = classifier.Predict(s.Text())
	}
	return ComputeReport(actual, predicted)
}

// ComputeReport builds a Report from parallel actual and predicted labels.
// Labels appearing in either slice get a row; undefined ratios are zero.
func ComputeReport(actual, predicted []string) Report {
	report := Report{Total: len(actual)}
	if len(actual) == 0 {
		return report
	}

	support := map[string]int{}
	predictedCount := map[string]int{}
	truePositive := map[string]int{}
	correct := 0
	for i := range actual {
		support[actual[i]]++
		predictedCount[predicted[i]]++
		if actual[i] == predicted[i] {
			truePositive[actual[i]]++
			correct++
		}
	}
	report.Accuracy = float64(correct) / float64(len(actual))

	labelSet := map[string]struct{}{}
	for l := range support {
		labelSet[l] = struct{}{}
	}
	for l := range predictedCount {
		labelSet[l] = struct{}{}
	}
	labels := make([]string, 0, len(labelSet))
	for l := range labelSet {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	var macro, weighted ClassMetrics
	for _, label := range labels {
		m := ClassMetrics{
			Label:     label,
			Precision: ratio(truePositive[label], predictedCount[label]),
			Recall:    ratio(truePositive[label], support[label]),
			Support:   support[label],
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		report.Classes = append(report.Classes, m)

		macro.Precision += m.Precision
		macro.Recall += m.Recall
		macro.F1 += m.F1
		w := float64(m.Support)
		weighted.Precision += m.Precision * w
		weighted.Recall += m.Recall * w
		weighted.F1 += m.F1 * w
	}

	n := float64(len(labels))
	total := float64(len(actual))
	report.MacroAvg = ClassMetrics{
		Label:     "macro avg",
		Precision: macro.Precision / n,
		Recall:    macro.Recall / n,
		F1:        macro.F1 / n,
		Support:   len(actual),
	}
	report.WeightedAvg = ClassMetrics{
		Label:     "weighted avg",
		Precision: weighted.Precision / total,
		Recall:    weighted.Recall / total,
		F1:        weighted.F1 / total,
		Support:   len(actual),
	}
	return report
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// String renders the report as a classification table.
func (r Report) String() string {
	width := len("weighted avg")
	for _, c := range r.Classes {
		width = max(width, len(c.Label))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Accuracy: %.4f\n\n", r.Accuracy)
	fmt.Fprintf(&b, "%*s %10s %10s %10s %10s\n\n", width, "", "precision", "recall", "f1-score", "support")
	row := func(m ClassMetrics) {
		fmt.Fprintf(&b, "%*s %10.2f %10.2f %10.2f %10d\n", width, m.Label, m.Precision, m.Recall, m.F1, m.Support)
	}
	for _, c := range r.Classes {
		row(c)
	}
	b.WriteString("\n")
	row(r.MacroAvg)
	row(r.WeightedAvg)
	return b.String()
}
