package cli

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helpdesk-tools/ticket-triage/internal/triage"
)

func newPredictCommand() *cobra.Command {
	var (
		modelPath   string
		description string
	)

	cmd := &cobra.Command{
		Use:   "predict <title...>",
		Short: "Triage a single ticket",
		Long:  `Load the model artifact and print the predicted category and priority as JSON. Without an artifact the category falls back to "uncategorized".`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("model") {
				cfg, _, err := loadConfig()
				if err != nil {
					return err
				}
				modelPath = cfg.Model.Path
			}

			title := strings.Join(args, " ")
			result := triage.LoadTriager(modelPath, nil).Triage(title, description)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]string{
				"title":              title,
				"description":        description,
				"predicted_category": result.Category,
				"predicted_priority": string(result.Priority),
			})
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "Artifact path (default from MODEL_PATH)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Ticket description")
	return cmd
}
