package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	appintegration "github.com/commercesync/backend/internal/application/integration"
	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	bold   = color.New(color.Bold)
	faint  = color.New(color.Faint)
)

func statusColor(status integration.SyncStatus) *color.Color {
	switch status {
	case integration.SyncStatusSuccess:
		return green
	case integration.SyncStatusPartial:
		return yellow
	case integration.SyncStatusFailed:
		return red
	default:
		return faint
	}
}

func outcomeColor(outcome integration.SyncOutcome) *color.Color {
	if outcome == integration.SyncOutcomeSuccess {
		return green
	}
	return red
}

// failedModules counts the modules that did not end in SUCCESS or SKIPPED
func failedModules(report *appintegration.TenantSyncReport) int {
	n := 0
	for _, r := range report.Results {
		if r.Status == integration.SyncStatusPartial || r.Status == integration.SyncStatusFailed {
			n++
		}
	}
	return n
}

func writeTenantReport(w io.Writer, report *appintegration.TenantSyncReport) {
	elapsed := report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond)
	fmt.Fprintf(w, "%s %s %s\n", bold.Sprint("Tenant"), report.TenantID, faint.Sprintf("(%s)", elapsed))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MODULE\tSTATUS\tTOTAL\tSUCCESS\tFAILED\t")
	for _, r := range report.Results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t\n",
			r.Module, statusColor(r.Status).Sprint(r.Status), r.TotalCount, r.SuccessCount, r.FailedCount)
	}
	_ = tw.Flush()

	for _, r := range report.Results {
		if r.Error != "" {
			fmt.Fprintf(w, "  %s %s: %s\n", red.Sprint("!"), r.Module, r.Error)
		}
		for _, f := range r.FailedItems {
			fmt.Fprintf(w, "  %s %s %s %s: %s\n", red.Sprint("x"), r.Module, f.Action, f.SubjectID, f.ErrorMessage)
		}
	}
}

func writeSweepReport(w io.Writer, sweep *appintegration.SweepReport) {
	for _, report := range sweep.Reports {
		writeTenantReport(w, report)
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%s %d tenant(s): %s, %s, %s\n",
		bold.Sprint("Sweep"),
		sweep.Tenants,
		green.Sprintf("%d succeeded", sweep.Succeeded),
		red.Sprintf("%d failed", sweep.Failed),
		faint.Sprintf("%d skipped", sweep.Skipped),
	)
}

func writeLogEntries(w io.Writer, entries []integration.SyncLogEntry, total int64) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No sync log entries")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tMODULE\tACTION\tSUBJECT\tOUTCOME\tMESSAGE\t")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			e.OccurredAt.Local().Format("2006-01-02 15:04:05"),
			e.Module, e.Action, e.SubjectID,
			outcomeColor(e.Outcome).Sprint(e.Outcome),
			e.Message,
		)
	}
	_ = tw.Flush()
	fmt.Fprintln(w, faint.Sprintf("%d of %d entries", len(entries), total))
}

func writeTenants(w io.Writer, tenants []*integration.Tenant) {
	if len(tenants) == 0 {
		fmt.Fprintln(w, "No tenants installed")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTORE\tCONFIGURED\tUPDATED\t")
	for _, t := range tenants {
		store := "-"
		if t.Target != nil && t.Target.BaseURL != "" {
			store = t.Target.BaseURL
		}
		configured := red.Sprint("no")
		if t.IsConfigured() {
			configured = green.Sprint("yes")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			t.ID, t.Name, store, configured, t.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}
