// Package cli implements the triagectl operator commands.
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/helpdesk-tools/ticket-triage/internal/config"
	"github.com/helpdesk-tools/ticket-triage/internal/observability"
)

// NewRootCommand assembles triagectl.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "triagectl",
		Short:        "Ticket triage model tooling",
		Long:         `triagectl trains and evaluates the ticket category model, generates synthetic training data, runs ad-hoc predictions and issues API tokens.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newTrainCommand(),
		newGenerateCommand(),
		newPredictCommand(),
		newTokenCommand(),
	)
	return rootCmd
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
