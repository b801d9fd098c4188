package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/CosmoTheDev/gl2gh/internal/config"
)

var (
	protectRepos string
	protectRules string
)

var protectCmd = &cobra.Command{
	Use:   "protect-branch <github-owner> <branch>",
	Short: "Apply a branch protection policy to repositories",
	Long: `Protects <branch> on every repository in --repos using the policy in
--rules (YAML). Fields missing from the file take their defaults: no required
status checks, one approving review, stale reviews dismissed, admins enforced.`,
	Args: cobra.ExactArgs(2),
	RunE: runProtect,
}

func init() {
	protectCmd.Flags().StringVar(&protectRepos, "repos", "", "Comma-separated repository names (required)")
	protectCmd.Flags().StringVar(&protectRules, "rules", "", "Branch protection policy file (YAML)")
	_ = protectCmd.MarkFlagRequired("repos")
}

func runProtect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	repos := splitList(protectRepos)
	if len(repos) == 0 {
		return fmt.Errorf("--repos must name at least one repository")
	}
	policy, err := config.LoadBranchProtectionPolicy(protectRules)
	if err != nil {
		return err
	}

	s, err := newSession(ctx, config.NeedGitHub)
	if err != nil {
		return err
	}
	defer s.Close()

	started := time.Now()
	results := s.orch.ConfigureBranchProtection(ctx, args[0], repos, args[1], policy)
	recordBatch(ctx, s, "protect-branch", args[0], started, results)
	printResults("protect-branch "+args[1], results)
	return nil
}
