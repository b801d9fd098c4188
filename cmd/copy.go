package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/CosmoTheDev/gl2gh/internal/config"
	"github.com/CosmoTheDev/gl2gh/internal/migrate"
)

var (
	copyStartsWith string
	copyWorkers    int
)

var copyCmd = &cobra.Command{
	Use:   "copy-content <gitlab-group> [github-owner]",
	Short: "Copy branches and tags of every listed project to GitHub",
	Long: `Creates one GitHub repository per project (reusing existing ones), clones
the project, and pushes every branch and tag. Without github-owner the
repositories are created under the token's user.

Per-project and per-ref failures are reported but do not fail the command;
the exit status is non-zero only when the project list could not be read.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCopy,
}

func init() {
	copyCmd.Flags().StringVar(&copyStartsWith, "starts-with", "", "Only copy projects whose name starts with this prefix")
	copyCmd.Flags().IntVar(&copyWorkers, "workers", -1, "Concurrent project pipelines (0 = unbounded, default from config)")
}

func runCopy(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := newSession(ctx, config.NeedGitLab|config.NeedGitHub)
	if err != nil {
		return err
	}
	defer s.Close()
	if copyWorkers >= 0 {
		s.orch.SetWorkers(copyWorkers)
	}

	owner := ""
	if len(args) == 2 {
		owner = args[1]
	}
	report, err := s.orch.CopyContent(ctx, args[0], owner, copyStartsWith)
	if err != nil {
		return err
	}
	printCopyReport(report)
	return nil
}

func printCopyReport(r *migrate.CopyReport) {
	fmt.Println(headerStyle.Render(fmt.Sprintf("copy-content %s → %s", r.Group, ownerOrUser(r.Owner))))
	for _, p := range r.Projects {
		switch {
		case p.Failed():
			fmt.Printf("  %s %-30s %s\n", failStyle.Render("✗"), p.Project.Name, dimStyle.Render(p.Err.Error()))
		case len(p.FailedRefs) > 0:
			fmt.Printf("  %s %-30s %d refs pushed, %d failed\n", warnStyle.Render("!"), p.Project.Name, len(p.PushedRefs), len(p.FailedRefs))
			for _, f := range p.FailedRefs {
				fmt.Printf("      %s %s\n", f.Ref, dimStyle.Render(f.Err.Error()))
			}
		default:
			fmt.Printf("  %s %-30s %d refs pushed\n", successStyle.Render("✓"), p.Project.Name, len(p.PushedRefs))
		}
	}
	summary := fmt.Sprintf("%d projects, %d failed; %d refs pushed, %d failed (%s)",
		r.Total(), r.FailedProjects(), r.PushedRefs(), r.FailedRefs(),
		r.FinishedAt.Sub(r.StartedAt).Round(time.Second))
	if r.FailedProjects() > 0 || r.FailedRefs() > 0 {
		fmt.Println(warnStyle.Render(summary))
		return
	}
	fmt.Println(successStyle.Render(summary))
}

func ownerOrUser(owner string) string {
	if owner == "" {
		return "(token user)"
	}
	return owner
}
