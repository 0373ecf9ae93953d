package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warp/worklog-engine/worklog"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the current and previous month's worklogs",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	store, logs, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := logs.List(context.Background())
	if err != nil {
		return err
	}

	summary := worklog.Summarize(records, worklog.Today())
	printBucket(summary.Previous)
	printBucket(summary.Current)
	fmt.Println(worklog.MonthlyComment(summary.Current.TotalHours))
	return nil
}

func printBucket(b worklog.MonthBucket) {
	fmt.Printf("%d-%02d (%s hours)\n", b.Year, int(b.Month), b.TotalHours.String())
	for _, r := range b.Records {
		day, _ := r.Day()
		notes := ""
		if r.Notes != "" {
			notes = " - " + r.Notes
		}
		fmt.Printf("  %s  %5s hr  %s%s\n", day, r.DurationHours.String(), r.Reason, notes)
	}
}
