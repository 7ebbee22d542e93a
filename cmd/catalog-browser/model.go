package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/unklstewy/orbit-globe/pkg/camera"
	"github.com/unklstewy/orbit-globe/pkg/catalog"
	"github.com/unklstewy/orbit-globe/pkg/config"
	"github.com/unklstewy/orbit-globe/pkg/orbit"
)

// Rows of satellites shown at once in the category view.
const pageSize = 15

type model struct {
	cfg        *config.Config
	configPath string
	catalog    *orbit.Catalog
	filters    []catalog.Filter

	selection camera.Selection
	cursor    int

	// Category view
	open      bool
	satCursor int

	dirty          bool
	message        string
	messageIsError bool

	width  int
	height int
}

func newModel(cfg *config.Config, configPath string, c *orbit.Catalog) model {
	return model{
		cfg:        cfg,
		configPath: configPath,
		catalog:    c,
		filters:    catalog.CatalogFilters(c),
		selection:  cfg.Camera.State().Selection,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		m.message = ""
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "enter", "right", "l":
			if !m.open && len(m.filters) > 0 {
				m.open = true
				m.satCursor = 0
			}
		case "esc", "left", "h":
			m.open = false
		case " ":
			m.toggle()
		case "a":
			m.selection = camera.All()
			m.dirty = true
		case "s":
			m.save()
		}
	}
	return m, nil
}

func (m *model) move(d int) {
	if m.open {
		n := len(m.currentOrbits())
		m.satCursor = clampIndex(m.satCursor+d, n)
		return
	}
	m.cursor = clampIndex(m.cursor+d, len(m.filters))
}

func clampIndex(i, n int) int {
	if i < 0 || n == 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (m *model) toggle() {
	if len(m.filters) == 0 {
		return
	}
	m.selection = m.selection.Toggle(m.filters[m.cursor].Set)
	m.dirty = true
}

func (m *model) save() {
	m.cfg.Camera.SetSelection(m.selection)
	if err := m.cfg.Save(m.configPath); err != nil {
		m.message = fmt.Sprintf("Failed to save: %v", err)
		m.messageIsError = true
		return
	}
	m.dirty = false
	m.message = fmt.Sprintf("Saved %d highlighted categories to %s", len(m.cfg.Camera.Highlight), m.configPath)
	m.messageIsError = false
}

func (m model) currentOrbits() []orbit.Orbit {
	if len(m.filters) == 0 {
		return nil
	}
	return m.catalog.Orbits(m.filters[m.cursor].Set)
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	cursorStyle   = lipgloss.NewStyle().Background(lipgloss.Color("237"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
)

func (m model) View() string {
	var b strings.Builder

	title := fmt.Sprintf("ORBIT CATALOG  %d satellites  epoch %s",
		m.catalog.Len(), m.catalog.Epoch().UTC().Format("2006-01-02 15:04"))
	if m.dirty {
		title += "  [modified]"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	if m.open {
		b.WriteString(m.renderCategory())
	} else {
		b.WriteString(m.renderCategories())
	}

	b.WriteString("\n")
	if m.message != "" {
		style := okStyle
		if m.messageIsError {
			style = errStyle
		}
		b.WriteString(style.Render(m.message))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(m.help()))
	return b.String()
}

func (m model) help() string {
	if m.open {
		return "↑/↓ scroll • esc back • space highlight • s save • q quit"
	}
	return "↑/↓ move • enter open • space highlight • a show all • s save • q quit"
}

func (m model) renderCategories() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-3s %-34s %6s", "", "CATEGORY", "COUNT")))
	b.WriteString("\n")

	if len(m.filters) == 0 {
		b.WriteString(dimStyle.Render("  Catalog is empty"))
		b.WriteString("\n")
		return b.String()
	}

	for i, f := range m.filters {
		marker := " "
		if m.selection.Contains(f.Set) {
			marker = selectedStyle.Render("●")
		}
		line := fmt.Sprintf("  %s   %-34s %6d", marker, truncate(f.Name, 34), f.Count)
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if f := m.filters[m.cursor]; f.Description != "" {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("  " + f.Description))
		if f.URL != "" {
			b.WriteString(dimStyle.Render("  " + f.URL))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) renderCategory() string {
	f := m.filters[m.cursor]
	orbits := m.currentOrbits()

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d)", f.Name, len(orbits))))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-8s %-8s %7s %8s %7s %9s %9s",
		"NORAD", "OWNER", "INCL", "ECC", "PERIOD", "PERIGEE", "APOGEE")))
	b.WriteString("\n")

	start := 0
	if m.satCursor >= pageSize {
		start = m.satCursor - pageSize + 1
	}
	end := start + pageSize
	if end > len(orbits) {
		end = len(orbits)
	}

	for i := start; i < end; i++ {
		line := "  " + OrbitRow(orbits[i])
		if i == m.satCursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if end < len(orbits) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  … %d more", len(orbits)-end)))
		b.WriteString("\n")
	}
	return b.String()
}

// OrbitRow formats one satellite's orbit summary.
func OrbitRow(o orbit.Orbit) string {
	owner := o.Elements.Owner
	if owner == "" {
		owner = catalog.UnknownOwner
	}
	return fmt.Sprintf("%-8s %-8s %6.2f° %8.5f %6.1fm %7.0fkm %7.0fkm",
		truncate(o.ID, 8), truncate(owner, 8),
		o.Elements.Inclination, o.Eccentricity,
		o.Period().Minutes(), o.PerigeeAltitude(), o.ApogeeAltitude())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
