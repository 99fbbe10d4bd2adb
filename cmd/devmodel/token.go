package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/devmodel/internal/auth"
)

func tokenCmd(configPath *string) *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for the HTTP API",
		Long: `Issue a signed access token for the HTTP API.

The token is signed with security.jwt.secret from the configuration (or
DEVMODEL_JWT_SECRET). Roles are viewer, operator and admin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if cfg.Security.JWT.Secret == "" {
				return fmt.Errorf("security.jwt.secret is not set")
			}
			if subject == "" {
				return fmt.Errorf("--subject is required")
			}

			minutes := cfg.Security.JWT.AccessTokenTTL
			if ttl > 0 {
				minutes = int(ttl.Minutes())
				if minutes < 1 {
					return fmt.Errorf("--ttl must be at least 1m, got %s", ttl)
				}
			}
			tok, err := auth.GenerateAccessToken(subject, auth.Role(role), cfg.Security.JWT.Secret, minutes)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Token subject, recorded in server logs")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleViewer), "Role: viewer, operator or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default security.jwt.access_token_ttl minutes)")
	return cmd
}
