package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/worklog-engine/worklog"
)

var (
	exportYear  int
	exportMonth int
	exportOut   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a month's worklogs as CSV (defaults to last month)",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().IntVar(&exportYear, "year", 0, "Report year (defaults to last month's)")
	exportCmd.Flags().IntVar(&exportMonth, "month", 0, "Report month 1-12 (defaults to last month)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	today := worklog.Today()
	target := worklog.NewCalendarDay(today.Year, today.Month-1, 1)
	year, month := target.Year, target.Month

	if exportYear != 0 {
		year = exportYear
	}
	if exportMonth != 0 {
		if exportMonth < 1 || exportMonth > 12 {
			return fmt.Errorf("invalid month %d: must be 1-12", exportMonth)
		}
		month = time.Month(exportMonth)
	}

	store, logs, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := logs.List(context.Background())
	if err != nil {
		return err
	}

	csv, err := worklog.ExportMonth(records, year, month)
	if err != nil {
		if errors.Is(err, worklog.ErrEmptyReport) {
			fmt.Printf("No worklogs recorded in %d-%02d\n", year, int(month))
			return nil
		}
		return err
	}

	if exportOut == "" {
		fmt.Print(csv)
		return nil
	}
	if err := os.WriteFile(exportOut, []byte(csv), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Printf("Wrote %s\n", exportOut)
	return nil
}
