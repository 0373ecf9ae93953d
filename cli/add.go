package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warp/worklog-engine/worklog"
)

var (
	addDate   string
	addHours  float64
	addReason string
	addNotes  string
	addForce  bool
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an overtime session",
	Args:  cobra.NoArgs,
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addDate, "date", worklog.Today().ISO(), "Calendar day (YYYY-MM-DD)")
	addCmd.Flags().Float64Var(&addHours, "hours", 0, "Overtime duration in hours")
	addCmd.Flags().StringVar(&addReason, "reason", "", "Why the overtime happened (required)")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "Optional free-text note")
	addCmd.Flags().BoolVar(&addForce, "force", false, "Replace an existing record on the same day")
}

func runAdd(cmd *cobra.Command, args []string) error {
	candidate := worklog.Candidate{
		Date:          addDate,
		DurationHours: worklog.Hours(addHours),
		Reason:        addReason,
		Notes:         addNotes,
	}
	if err := worklog.ValidateCandidate(candidate); err != nil {
		return err
	}
	day, err := worklog.ParseDay(candidate.Date)
	if err != nil {
		return err
	}

	store, logs, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	records, err := logs.List(ctx)
	if err != nil {
		return err
	}

	// Upsert-by-date: one record per calendar day.
	if existing := worklog.FindByDate(records, day); existing != nil {
		if !addForce {
			return fmt.Errorf("a worklog already exists on %s (id %s); use --force to replace it", day, existing.ID)
		}
		if _, err := logs.Update(ctx, existing.ID, candidate); err != nil {
			return err
		}
		fmt.Printf("Replaced %s on %s\n", existing.ID, day)
		fmt.Println(worklog.SessionComment(candidate.DurationHours))
		return nil
	}

	created, err := logs.Create(ctx, candidate)
	if err != nil {
		return err
	}
	fmt.Printf("Recorded %s on %s\n", created.ID, day)
	fmt.Println(worklog.SessionComment(candidate.DurationHours))
	return nil
}
