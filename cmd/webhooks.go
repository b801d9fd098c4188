package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/CosmoTheDev/gl2gh/internal/config"
)

var (
	webhookRepos    string
	webhookTemplate string
)

var webhooksCmd = &cobra.Command{
	Use:   "webhooks <github-owner>",
	Short: "Create repository webhooks from a template",
	Long: `Creates one webhook per repository in --repos. The template (YAML) may set
common "events" and "payloadUrl" at the top level; every other key names a
repository and must carry its "secret", optionally overriding the common
values. Nothing is created if any repository is missing from the template.`,
	Args: cobra.ExactArgs(1),
	RunE: runWebhooks,
}

func init() {
	webhooksCmd.Flags().StringVar(&webhookRepos, "repos", "", "Comma-separated repository names (required)")
	webhooksCmd.Flags().StringVar(&webhookTemplate, "template", "", "Webhook template file (required)")
	_ = webhooksCmd.MarkFlagRequired("repos")
	_ = webhooksCmd.MarkFlagRequired("template")
}

func runWebhooks(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	repos := splitList(webhookRepos)
	if len(repos) == 0 {
		return fmt.Errorf("--repos must name at least one repository")
	}
	tmpl, err := config.LoadWebhookTemplate(webhookTemplate)
	if err != nil {
		return err
	}
	specs, err := tmpl.Specs(repos)
	if err != nil {
		return err
	}

	s, err := newSession(ctx, config.NeedGitHub)
	if err != nil {
		return err
	}
	defer s.Close()

	started := time.Now()
	results := s.orch.CreateWebhooks(ctx, specs, args[0])
	recordBatch(ctx, s, "webhooks", args[0], started, results)
	printResults("webhooks", results)
	return nil
}
