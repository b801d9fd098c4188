package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/CosmoTheDev/gl2gh/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and manage gl2gh configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration (secrets redacted)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		redactConfig(cfg)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the path to the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := config.ConfigPath(cfgFile)
		if err != nil {
			return err
		}
		fmt.Println(p)
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := config.ConfigPath(cfgFile)
		if err != nil {
			return err
		}
		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "nano"
		}
		fmt.Printf("Opening %s with %s...\n", p, editor)
		c := exec.Command(editor, p) // #nosec G204 -- editor is from $EDITOR env var, intentional user-controlled binary
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively write GitLab and GitHub settings",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configShowCmd, configPathCmd, configEditCmd, configInitCmd)
}

func redactConfig(cfg *config.Config) {
	if cfg.GitLab.Token != "" {
		cfg.GitLab.Token = "glpat-***"
	}
	if cfg.GitHub.Token != "" {
		cfg.GitHub.Token = "ghp-***"
	}
	if cfg.Notify.Webhook.Secret != "" {
		cfg.Notify.Webhook.Secret = "***"
	}
	if cfg.Notify.Slack.WebhookURL != "" {
		cfg.Notify.Slack.WebhookURL = "https://hooks.slack.com/***"
	}
	if cfg.Database.DSN != "" {
		cfg.Database.DSN = "***"
	}
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	workers := strconv.Itoa(cfg.Migration.Workers)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("GitLab URL").
				Value(&cfg.GitLab.URL),
			huh.NewInput().
				Title("GitLab token").
				Description("Needs the api scope").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.GitLab.Token),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("GitHub URL").
				Description("github.com or a GitHub Enterprise host").
				Value(&cfg.GitHub.URL),
			huh.NewInput().
				Title("GitHub token").
				Description("Needs the repo and admin:repo_hook scopes").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.GitHub.Token),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Concurrent workers").
				Description("0 = unbounded").
				Value(&workers).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < 0 {
						return fmt.Errorf("enter a number >= 0")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Create repositories as private?").
				Value(&cfg.Migration.Private),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	cfg.Migration.Workers, _ = strconv.Atoi(workers)

	path, err := config.ConfigPath(cfgFile)
	if err != nil {
		return fmt.Errorf("getting config path: %w", err)
	}
	if err := config.Save(cfg, path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Println(successStyle.Render("  ✓ Configuration saved to " + path))
	return nil
}
