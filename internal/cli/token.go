package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helpdesk-tools/ticket-triage/internal/auth"
)

func newTokenCommand() *cobra.Command {
	var (
		role string
		ttl  int
	)

	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue an API bearer token",
		Long:  `Sign an HS256 token with AUTH_JWT_SECRET for the given subject. The role must be agent or admin.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.Auth.AuthEnabled() {
				return errors.New("AUTH_JWT_SECRET is not set")
			}
			if !cmd.Flags().Changed("ttl") {
				ttl = cfg.Auth.AccessTokenTTLMinutes
			}

			token, expiresAt, err := auth.NewTokenManager(cfg.Auth.JWTSecret, ttl).GenerateToken(args[0], auth.Role(role))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.UTC().Format("2006-01-02T15:04:05Z"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&role, "role", "r", string(auth.RoleAgent), "Token role (agent or admin)")
	cmd.Flags().IntVar(&ttl, "ttl", 0, "Lifetime in minutes (default from AUTH_ACCESS_TOKEN_TTL_MINUTES)")
	return cmd
}
