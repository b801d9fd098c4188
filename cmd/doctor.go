package cmd

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/CosmoTheDev/gl2gh/internal/config"
	"github.com/CosmoTheDev/gl2gh/internal/database"
	"github.com/CosmoTheDev/gl2gh/internal/repository"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Verify credentials and system health",
	Long: `Checks the GitLab and GitHub credentials and the run ledger. The GitHub
token is verified by looking up its user.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	allOK := true
	fmt.Println("=== gl2gh doctor ===")
	fmt.Println()

	fmt.Print("GitLab token ............. ")
	if cfg.GitLab.Token == "" {
		fmt.Println("MISSING (set gitlab.token or " + config.EnvPrefix + "_GITLAB_TOKEN)")
		allOK = false
	} else if _, err := repository.NewGitLabDirectory(cfg.GitLab, cfg.Migration.RequestTimeout); err != nil {
		fmt.Printf("FAIL (%s)\n", err)
		allOK = false
	} else {
		fmt.Printf("OK (%s)\n", cfg.GitLab.URL)
	}

	fmt.Print("GitHub token ............. ")
	if cfg.GitHub.Token == "" {
		fmt.Println("MISSING (set github.token or " + config.EnvPrefix + "_GITHUB_TOKEN)")
		allOK = false
	} else {
		gh, err := repository.NewGitHubDestination(cfg.GitHub, cfg.Migration.RequestTimeout)
		if err == nil {
			var login string
			if login, err = gh.CurrentUser(ctx); err == nil {
				fmt.Printf("OK (%s as %s)\n", cfg.GitHub.URL, login)
			}
		}
		if err != nil {
			fmt.Printf("FAIL (%s)\n", err)
			allOK = false
		}
	}

	fmt.Print("Run ledger ............... ")
	if !cfg.Database.Enabled {
		fmt.Println("disabled")
	} else if db, err := database.Open(ctx, cfg.Database); err != nil {
		fmt.Printf("FAIL (%s)\n", err)
		allOK = false
	} else {
		fmt.Printf("OK (%s: %s)\n", db.Driver(), cfg.Database.Path)
		db.Close()
	}

	fmt.Print("git binary ............... ")
	if path, err := exec.LookPath("git"); err != nil {
		fmt.Println("NOT FOUND (optional; only local file:// sources need it)")
	} else {
		fmt.Printf("OK (%s)\n", path)
	}

	fmt.Printf("Work directory ........... %s\n", cfg.Migration.WorkDir)

	fmt.Println()
	if allOK {
		fmt.Println(successStyle.Render("All checks passed."))
		return nil
	}
	return fmt.Errorf("some checks failed")
}
