package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tenantsCmd = &cobra.Command{
	Use:   "tenants",
	Short: "List installed tenants and whether their store is configured",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		tenants, err := current.tenants.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("list tenants: %w", err)
		}
		writeTenants(cmd.OutOrStdout(), tenants)
		return nil
	},
}
