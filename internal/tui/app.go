package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/CosmoTheDev/gl2gh/models"
)

// Pager is the bubbletea model behind `list --interactive`: the worklist
// shown pageSize projects at a time.
type Pager struct {
	group    string
	projects []models.Project
	pageSize int
	page     int
	cursor   int // index within the current page
	detail   bool
	width    int
	height   int
}

// NewPager creates a Pager. A pageSize below 1 shows 10 per page.
func NewPager(group string, projects []models.Project, pageSize int) *Pager {
	if pageSize < 1 {
		pageSize = 10
	}
	return &Pager{group: group, projects: projects, pageSize: pageSize}
}

// Run starts the bubbletea program.
func (p *Pager) Run() error {
	_, err := tea.NewProgram(p, tea.WithAltScreen()).Run()
	return err
}

func (p *Pager) Init() tea.Cmd { return nil }

func (p *Pager) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return p, tea.Quit
		case "n", "right", " ":
			if p.page < p.Pages()-1 {
				p.page++
				p.cursor = 0
			}
		case "p", "left":
			if p.page > 0 {
				p.page--
				p.cursor = 0
			}
		case "j", "down":
			p.cursor++
		case "k", "up":
			if p.cursor > 0 {
				p.cursor--
			}
		case "enter":
			p.detail = !p.detail
		}
	}
	if n := len(p.Visible()); p.cursor >= n {
		p.cursor = max(0, n-1)
	}
	return p, nil
}

// Pages is the number of pages, at least 1.
func (p *Pager) Pages() int {
	return max(1, (len(p.projects)+p.pageSize-1)/p.pageSize)
}

// Page is the zero-based current page.
func (p *Pager) Page() int { return p.page }

// Visible returns the projects on the current page.
func (p *Pager) Visible() []models.Project {
	start := p.page * p.pageSize
	if start >= len(p.projects) {
		return nil
	}
	return p.projects[start:min(start+p.pageSize, len(p.projects))]
}

// Selected returns the highlighted project, if any.
func (p *Pager) Selected() (models.Project, bool) {
	visible := p.Visible()
	if p.cursor < len(visible) {
		return visible[p.cursor], true
	}
	return models.Project{}, false
}

func (p *Pager) View() string {
	width := max(40, p.width)

	header := lipgloss.JoinHorizontal(lipgloss.Left,
		titleStyle.Render("gl2gh"),
		"  ",
		dimStyle.Render(fmt.Sprintf("%s · %d projects", p.group, len(p.projects))),
		"  ",
		pageBadgeStyle.Render(fmt.Sprintf("page %d/%d", p.page+1, p.Pages())),
	)

	rows := []string{panelHeaderStyle.Render("Projects to migrate"), ""}
	if len(p.projects) == 0 {
		rows = append(rows, dimStyle.Render("No projects match."))
	}
	offset := p.page * p.pageSize
	for i, proj := range p.Visible() {
		label := fmt.Sprintf("%3d  %s", offset+i+1, proj.Name)
		if i == p.cursor {
			rows = append(rows, selectedRowStyle.Render(label))
			continue
		}
		rows = append(rows, rowStyle.Render(label))
	}
	if sel, ok := p.Selected(); ok && p.detail {
		rows = append(rows, "",
			dimStyle.Render("path     ")+sel.PathWithNamespace,
			dimStyle.Render("clone    ")+sel.CloneURL,
			dimStyle.Render("branch   ")+sel.DefaultBranch,
		)
		if sel.Description != "" {
			rows = append(rows, dimStyle.Render("about    ")+sel.Description)
		}
	}
	body := panelStyle.Width(width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))

	status := dimStyle.Render("n/p page  j/k move  enter details  q quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}
