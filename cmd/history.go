package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CosmoTheDev/gl2gh/internal/database"
)

var (
	historyLimit int
	historyRun   int64
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs from the run ledger",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show")
	historyCmd.Flags().Int64Var(&historyRun, "run", 0, "Show the items of one run")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(0)
	if err != nil {
		return err
	}
	if !cfg.Database.Enabled {
		return fmt.Errorf("run history is disabled (database.enabled: false)")
	}
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	rec := database.NewRecorder(db)

	if historyRun > 0 {
		return printRunItems(ctx, rec, historyRun)
	}

	runs, err := rec.RecentRuns(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println(dimStyle.Render("No runs recorded yet."))
		return nil
	}
	fmt.Println(headerStyle.Render(fmt.Sprintf("%-5s %-21s %-22s %-20s %6s %6s", "ID", "KIND", "STARTED", "TARGET", "TOTAL", "FAILED")))
	for _, r := range runs {
		target := r.GroupName
		if r.Owner != "" {
			target = joinNonEmpty(target, r.Owner)
		}
		line := fmt.Sprintf("%-5d %-21s %-22s %-20s %6d %6d", r.ID, r.Kind, r.StartedAt, target, r.Total, r.Failed)
		switch {
		case r.ExitCode != 0:
			fmt.Println(failStyle.Render(line))
		case r.Failed > 0:
			fmt.Println(warnStyle.Render(line))
		default:
			fmt.Println(line)
		}
	}
	return nil
}

func printRunItems(ctx context.Context, rec *database.Recorder, id int64) error {
	run, err := rec.Run(ctx, id)
	if err != nil {
		return err
	}
	items, err := rec.Items(ctx, id)
	if err != nil {
		return err
	}
	fmt.Println(headerStyle.Render(fmt.Sprintf("run %d: %s %s (%s → %s)", run.ID, run.Kind, run.GroupName, run.StartedAt, run.FinishedAt)))
	if run.Error != "" {
		fmt.Println(failStyle.Render(run.Error))
	}
	for _, it := range items {
		mark := successStyle.Render("✓")
		if it.Stage == "failed" || it.FailedRefs > 0 {
			mark = failStyle.Render("✗")
		}
		fmt.Printf("  %s %-40s %-16s pushed=%d failed=%d %s\n", mark, it.Path, it.Stage, it.PushedRefs, it.FailedRefs, dimStyle.Render(it.Error))
	}
	return nil
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " → " + b
}

