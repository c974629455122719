package main

import (
	"fmt"

	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/spf13/cobra"
)

var (
	syncTenantID string
	syncModules  []string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize one tenant",
	Long: `Runs a batch synchronization for one tenant and prints the per-module report.

Modules default to products, customers and orders, in that order.`,
	Example: `  syncctl sync --tenant 01HX... --modules products,orders`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		modules, err := parseModules(syncModules)
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		report, err := current.sync.SyncTenant(ctx, syncTenantID, modules...)
		if report != nil {
			writeTenantReport(cmd.OutOrStdout(), report)
		}
		if err != nil {
			return fmt.Errorf("sync tenant %s: %w", syncTenantID, err)
		}
		if failed := failedModules(report); failed > 0 {
			return fmt.Errorf("%d module(s) did not fully succeed", failed)
		}
		return nil
	},
}

var syncAllCmd = &cobra.Command{
	Use:   "sync-all",
	Short: "Synchronize every configured tenant",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		sweep, err := current.sync.SyncAll(ctx)
		if err != nil {
			return err
		}
		writeSweepReport(cmd.OutOrStdout(), sweep)
		if sweep.Failed > 0 {
			return fmt.Errorf("%d tenant(s) failed", sweep.Failed)
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncTenantID, "tenant", "", "Tenant (SOURCE company) id")
	syncCmd.Flags().StringSliceVar(&syncModules, "modules", nil, "Modules to run (products, customers, orders)")
	_ = syncCmd.MarkFlagRequired("tenant")
}

// parseModules accepts singular and plural names and drops duplicates
func parseModules(names []string) ([]integration.SyncModule, error) {
	seen := make(map[integration.SyncModule]bool, len(names))
	modules := make([]integration.SyncModule, 0, len(names))
	for _, name := range names {
		m, err := integration.ParseSyncModule(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, name)
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		modules = append(modules, m)
	}
	return modules, nil
}
