package main

import (
	"fmt"

	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/spf13/cobra"
)

var (
	logsTenantID string
	logsModule   string
	logsOutcome  string
	logsLimit    int
	logsOffset   int
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "List the sync log of a tenant, most recent first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		filter, err := logFilter(logsModule, logsOutcome, logsLimit, logsOffset)
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		entries, total, err := current.logs.ListForTenant(ctx, logsTenantID, filter)
		if err != nil {
			return fmt.Errorf("list sync logs: %w", err)
		}
		writeLogEntries(cmd.OutOrStdout(), entries, total)
		return nil
	},
}

func init() {
	logsCmd.Flags().StringVar(&logsTenantID, "tenant", "", "Tenant (SOURCE company) id")
	logsCmd.Flags().StringVar(&logsModule, "module", "", "Only show one module")
	logsCmd.Flags().StringVar(&logsOutcome, "outcome", "", "Only show success or failed entries")
	logsCmd.Flags().IntVar(&logsLimit, "limit", 50, "Maximum number of entries")
	logsCmd.Flags().IntVar(&logsOffset, "offset", 0, "Entries to skip")
	_ = logsCmd.MarkFlagRequired("tenant")
}

func logFilter(module, outcome string, limit, offset int) (integration.SyncLogFilter, error) {
	filter := integration.SyncLogFilter{Limit: limit, Offset: offset}
	if module != "" {
		m, err := integration.ParseSyncModule(module)
		if err != nil {
			return filter, fmt.Errorf("%w: %q", err, module)
		}
		filter.Module = &m
	}
	if outcome != "" {
		o := integration.SyncOutcome(outcome)
		if !o.IsValid() {
			return filter, fmt.Errorf("unknown outcome %q (want success or failed)", outcome)
		}
		filter.Outcome = &o
	}
	return filter, nil
}
