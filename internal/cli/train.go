package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helpdesk-tools/ticket-triage/internal/training"
)

func newTrainCommand() *cobra.Command {
	var opts training.Options

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train and evaluate the category model",
		Long:  `Fit the TF-IDF + Naive Bayes category model on a stratified split of the training CSV, print the held-out classification report and write the model artifact.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			flags := cmd.Flags()
			if !flags.Changed("data") {
				opts.DataPath = cfg.Model.TrainingData
			}
			if !flags.Changed("model") {
				opts.ModelPath = cfg.Model.Path
			}
			if !flags.Changed("max-features") {
				opts.MaxFeatures = cfg.Model.MaxFeatures
			}
			if !flags.Changed("alpha") {
				opts.Alpha = cfg.Model.Alpha
			}
			if !flags.Changed("test-size") {
				opts.TestSize = cfg.Model.TestSize
			}
			if !flags.Changed("seed") {
				opts.Seed = cfg.Model.Seed
			}

			outcome, err := training.NewTrainer(logger).Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Training set size: %d\n", outcome.TrainSize)
			fmt.Fprintf(out, "Test set size: %d\n\n", outcome.TestSize)
			fmt.Fprint(out, outcome.Report.String())
			fmt.Fprintf(out, "\nCategories: %v\n", outcome.Model.Labels())
			fmt.Fprintf(out, "Model saved to %s\n", outcome.ModelPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.DataPath, "data", "d", "", "Training CSV (default from TRAINING_DATA_PATH)")
	cmd.Flags().StringVarP(&opts.ModelPath, "model", "m", "", "Artifact output path (default from MODEL_PATH)")
	cmd.Flags().IntVar(&opts.MaxFeatures, "max-features", 0, "Vocabulary size cap")
	cmd.Flags().Float64Var(&opts.Alpha, "alpha", 0, "Additive smoothing")
	cmd.Flags().Float64Var(&opts.TestSize, "test-size", 0, "Held-out fraction")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "Split seed")
	return cmd
}
