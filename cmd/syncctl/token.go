package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var tokenTenantID string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a dashboard token for a tenant",
	Long: `Issues a bearer token scoped to one tenant, as the install callback does.

Only the token is written to stdout so the output can be captured.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		if _, err := current.tenants.Get(ctx, tokenTenantID); err != nil {
			return fmt.Errorf("load tenant %s: %w", tokenTenantID, err)
		}

		token, expiresAt, err := current.tokens.IssueTenantToken(tokenTenantID)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		fmt.Fprintln(cmd.ErrOrStderr(), faint.Sprintf("expires %s", expiresAt.Format(time.RFC3339)))
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenTenantID, "tenant", "", "Tenant (SOURCE company) id")
	_ = tokenCmd.MarkFlagRequired("tenant")
}
