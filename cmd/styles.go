package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/CosmoTheDev/gl2gh/models"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#14B8A6"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// printResults writes one line per batch slot and a summary line.
func printResults[T any](title string, results []models.Result[T]) {
	fmt.Println(headerStyle.Render(title))
	for _, r := range results {
		if r.OK() {
			fmt.Printf("  %s %s\n", successStyle.Render("✓"), r.Target)
			continue
		}
		fmt.Printf("  %s %s %s\n", failStyle.Render("✗"), r.Target, dimStyle.Render(r.Err.Error()))
	}
	failed := models.Failed(results)
	summary := fmt.Sprintf("%d succeeded, %d failed", len(results)-failed, failed)
	if failed > 0 {
		fmt.Println(warnStyle.Render(summary))
		return
	}
	fmt.Println(successStyle.Render(summary))
}
