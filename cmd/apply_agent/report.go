package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/quick-apply/internal/config"
	"github.com/jonathan/quick-apply/internal/db"
	"github.com/jonathan/quick-apply/internal/report"
	"github.com/jonathan/quick-apply/internal/types"
)

var reportCommand = &cobra.Command{
	Use:   "report",
	Short: "Export recorded application attempts to an Excel workbook",
	Long: `Exports recorded attempts to an Excel workbook, optionally filtered by status.
With --id, prints the one recorded attempt as JSON instead.`,
	RunE: runReport,
}

var (
	reportConfigPath  string
	reportDatabaseURL string
	reportOut         string
	reportStatus      string
	reportLimit       int
	reportID          string
)

func init() {
	reportCommand.Flags().StringVar(&reportConfigPath, "config", "config.yaml", "Path to config.yaml")
	reportCommand.Flags().StringVar(&reportDatabaseURL, "db-url", "", "PostgreSQL URL or SQLite path (defaults to config, then DATABASE_URL env var)")
	reportCommand.Flags().StringVarP(&reportOut, "out", "o", "attempts.xlsx", "Output workbook path")
	reportCommand.Flags().StringVar(&reportStatus, "status", "", "Only export attempts with this status: submitted or aborted")
	reportCommand.Flags().IntVar(&reportLimit, "limit", 0, "Maximum number of attempts to export (0 for all)")
	reportCommand.Flags().StringVar(&reportID, "id", "", "Print the attempt with this ID as JSON instead of exporting")

	rootCmd.AddCommand(reportCommand)
}

// parseStatusFilter validates the --status flag.
func parseStatusFilter(s string) (types.OutcomeStatus, error) {
	switch st := types.OutcomeStatus(s); st {
	case types.OutcomePending, types.OutcomeSubmitted, types.OutcomeAborted:
		return st, nil
	default:
		return "", fmt.Errorf("invalid --status %q: must be submitted or aborted", s)
	}
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	status, err := parseStatusFilter(reportStatus)
	if err != nil {
		return err
	}
	var id uuid.UUID
	if reportID != "" {
		if id, err = uuid.Parse(reportID); err != nil {
			return fmt.Errorf("invalid --id %q: %w", reportID, err)
		}
	}

	cfg, err := config.LoadConfig(reportConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = reportDatabaseURL
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	store, err := db.Open(ctx, cfg.DatabaseURL, cfg.DataDir)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if reportID != "" {
		return printAttempt(ctx, cmd, store, id)
	}

	records, err := store.ListAttempts(ctx, db.ListOptions{Status: status, Limit: reportLimit})
	if err != nil {
		return fmt.Errorf("failed to list attempts: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No recorded attempts match.")
		return nil
	}

	path, err := report.WriteExcel(records, reportOut, time.Now())
	if err != nil {
		return err
	}

	s := report.Summarize(records)
	fmt.Printf("Exported %d attempt(s): %d submitted, %d aborted\n", s.Total, s.Submitted, s.Aborted)
	fmt.Printf("Saved report to: %s\n", path)
	return nil
}

// printAttempt writes one recorded attempt as indented JSON.
func printAttempt(ctx context.Context, cmd *cobra.Command, store db.Store, id uuid.UUID) error {
	rec, err := store.GetAttempt(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no recorded attempt with id %s", id)
	}
	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode attempt: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
