package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/CosmoTheDev/gl2gh/internal/config"
	"github.com/CosmoTheDev/gl2gh/internal/tui"
	"github.com/CosmoTheDev/gl2gh/models"
)

const nextResultsSeparator = "-----------------------------Next Results-----------------------------------"

var (
	listStartsWith  string
	listNumber      int
	listOutput      string
	listInteractive bool
)

var listCmd = &cobra.Command{
	Use:   "list <gitlab-group>",
	Short: "List the projects of a GitLab group that would be migrated",
	Long: `Lists the direct and shared projects of the group plus the direct projects
of its first-level subgroups, sorted by name and filtered by --starts-with.`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listStartsWith, "starts-with", "", "Only list projects whose name starts with this prefix")
	listCmd.Flags().IntVarP(&listNumber, "number", "n", 10, "Projects per block of text output / page of the interactive view")
	listCmd.Flags().StringVar(&listOutput, "output", "json", "Output format: json or text")
	listCmd.Flags().BoolVarP(&listInteractive, "interactive", "i", false, "Browse the list in a terminal pager")
}

func runList(cmd *cobra.Command, args []string) error {
	if listOutput != "json" && listOutput != "text" {
		return fmt.Errorf("unsupported output %q (supported: json, text)", listOutput)
	}
	ctx := context.Background()

	s, err := newSession(ctx, config.NeedGitLab)
	if err != nil {
		return err
	}
	defer s.Close()

	projects, err := s.orch.ListProjectsToMigrate(ctx, args[0], listStartsWith)
	if err != nil {
		return err
	}
	if listInteractive {
		return tui.NewPager(args[0], projects, listNumber).Run()
	}
	return printProjects(os.Stdout, projects, listNumber, listOutput)
}

// printProjects writes one project per line. Text output puts a separator
// before every block of perBlock projects after the first.
func printProjects(w io.Writer, projects []models.Project, perBlock int, output string) error {
	enc := json.NewEncoder(w)
	for i, p := range projects {
		if output == "json" {
			if err := enc.Encode(p); err != nil {
				return err
			}
			continue
		}
		if perBlock > 0 && i != 0 && i%perBlock == 0 {
			fmt.Fprintln(w, nextResultsSeparator)
		}
		fmt.Fprintln(w, p.String())
	}
	return nil
}
