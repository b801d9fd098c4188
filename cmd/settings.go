package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/CosmoTheDev/gl2gh/internal/config"
)

var settingsRepos string

var autoDeleteCmd = &cobra.Command{
	Use:   "auto-delete-branches <github-owner>",
	Short: "Delete head branches automatically after merge",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		repos, s, err := settingsSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		started := time.Now()
		results := s.orch.SetAutoDeleteMergedBranches(ctx, args[0], repos)
		recordBatch(ctx, s, "auto-delete-branches", args[0], started, results)
		printResults("auto-delete-branches", results)
		return nil
	},
}

var defaultBranchCmd = &cobra.Command{
	Use:   "default-branch <github-owner> <branch>",
	Short: "Set the default branch of repositories",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		repos, s, err := settingsSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		started := time.Now()
		results := s.orch.SetDefaultBranch(ctx, args[0], repos, args[1])
		recordBatch(ctx, s, "default-branch", args[0], started, results)
		printResults("default-branch "+args[1], results)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{autoDeleteCmd, defaultBranchCmd} {
		c.Flags().StringVar(&settingsRepos, "repos", "", "Comma-separated repository names (required)")
		_ = c.MarkFlagRequired("repos")
	}
}

func settingsSession(ctx context.Context) ([]string, *session, error) {
	repos := splitList(settingsRepos)
	if len(repos) == 0 {
		return nil, nil, fmt.Errorf("--repos must name at least one repository")
	}
	s, err := newSession(ctx, config.NeedGitHub)
	if err != nil {
		return nil, nil, err
	}
	return repos, s, nil
}
