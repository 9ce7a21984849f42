package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/helpdesk-tools/ticket-triage/internal/synthetic"
)

const defaultGenerateCount = 1000

func newGenerateCommand() *cobra.Command {
	var (
		output string
		count  int
		seed   int64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate synthetic training tickets",
		Long:  `Write a CSV of synthetic service-desk tickets drawn from per-category templates, then print the category and priority distribution.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("output") {
				cfg, _, err := loadConfig()
				if err != nil {
					return err
				}
				output = cfg.Model.TrainingData
			}
			if count <= 0 {
				return fmt.Errorf("count must be positive, got %d", count)
			}

			tickets := synthetic.NewGenerator(seed, time.Now).Generate(count)
			if err := synthetic.WriteCSVFile(output, tickets); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			dist := synthetic.Summarize(tickets)
			fmt.Fprintf(out, "Generated %d tickets and saved to %s\n", dist.Total, output)
			fmt.Fprintln(out, "\nCategory distribution:")
			printCounts(cmd, dist, dist.Categories)
			fmt.Fprintln(out, "\nPriority distribution:")
			printCounts(cmd, dist, dist.Priorities)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "CSV output path (default from TRAINING_DATA_PATH)")
	cmd.Flags().IntVarP(&count, "count", "n", defaultGenerateCount, "Number of tickets")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	return cmd
}

func printCounts(cmd *cobra.Command, dist synthetic.Distribution, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d (%.1f%%)\n", k, counts[k], dist.Percent(counts[k]))
	}
}
