package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/CosmoTheDev/gl2gh/internal/config"
)

var archiveYes bool

var archiveCmd = &cobra.Command{
	Use:   "archive <gitlab-project-path>...",
	Short: "Archive GitLab projects after migration",
	Long: `Archives each GitLab project (for example "FOO/bar" or "FOO/subgroup1/baz").
Archived projects become read-only. Asks for confirmation unless --yes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runArchive,
}

func init() {
	archiveCmd.Flags().BoolVarP(&archiveYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runArchive(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if !archiveYes {
		confirmed := false
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Archive %d GitLab project(s)?", len(args))).
					Description(strings.Join(args, "\n")).
					Affirmative("Archive").
					Negative("Cancel").
					Value(&confirmed),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}
		if !confirmed {
			fmt.Println(dimStyle.Render("Cancelled."))
			return nil
		}
	}

	s, err := newSession(ctx, config.NeedGitLab)
	if err != nil {
		return err
	}
	defer s.Close()

	started := time.Now()
	results := s.orch.ArchiveProjects(ctx, args)
	recordBatch(ctx, s, "archive", "", started, results)
	printResults("archive", results)
	return nil
}
