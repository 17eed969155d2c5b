package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/plasmalab/dhyb/internal/catalog"
	"github.com/plasmalab/dhyb/internal/container"
	"github.com/plasmalab/dhyb/internal/dataset"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).Padding(0, 2)
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type browseLevel int

const (
	levelTimesteps browseLevel = iota
	levelEntries
)

// entry is one selectable dataset at a timestep.
type entry struct {
	handle *dataset.Handle
}

func (e entry) String() string {
	return fmt.Sprintf("%-6s %-8s %s", e.handle.Kind(), e.handle.Qualifier(), e.handle.Name())
}

// BrowseModel is the interactive catalog browser: a timestep list that
// drills into the datasets indexed at the selected step.
type BrowseModel struct {
	cat     *catalog.Catalog
	steps   []int
	level   browseLevel
	cursor  int
	step    int
	entries []entry
	detail  string
	err     error
}

func NewBrowseModel(cat *catalog.Catalog) BrowseModel {
	return BrowseModel{cat: cat, steps: cat.Timesteps()}
}

func (m BrowseModel) Init() tea.Cmd { return nil }

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.refreshDetail()
		}
	case "down", "j":
		if m.cursor < m.listLen()-1 {
			m.cursor++
			m.refreshDetail()
		}
	case "enter", "l", "right":
		if m.level == levelTimesteps && len(m.steps) > 0 {
			m.enterTimestep(m.steps[m.cursor])
		}
	case "esc", "h", "left", "backspace":
		if m.level == levelEntries {
			m.level = levelTimesteps
			m.cursor = indexOf(m.steps, m.step)
			m.detail = ""
		}
	}
	return m, nil
}

func (m *BrowseModel) listLen() int {
	if m.level == levelTimesteps {
		return len(m.steps)
	}
	return len(m.entries)
}

func (m *BrowseModel) enterTimestep(step int) {
	ts, err := m.cat.Timestep(step)
	if err != nil {
		m.err = err
		return
	}
	m.step = step
	m.entries = collectEntries(ts)
	m.level = levelEntries
	m.cursor = 0
	m.refreshDetail()
}

func collectEntries(ts *container.Timestep) []entry {
	var out []entry
	for _, c := range []*container.Container{ts.Fields, ts.Phases, ts.RawFiles} {
		for _, q := range c.Qualifiers() {
			for _, name := range c.Names(q) {
				var qual container.Qual
				if c.Keyword() == "origin" {
					qual = container.Origin(q)
				} else {
					qual = container.SpeciesToken(q)
				}
				if h, err := c.Get(name, qual); err == nil {
					out = append(out, entry{handle: h})
				}
			}
		}
	}
	return out
}

// refreshDetail probes the selected handle's metadata. Shape and dtype reads
// are metadata-only; no array data is loaded while browsing.
func (m *BrowseModel) refreshDetail() {
	if m.level != levelEntries || m.cursor >= len(m.entries) {
		m.detail = ""
		return
	}
	h := m.entries[m.cursor].handle
	var b strings.Builder
	writeRow := func(k, v string) {
		b.WriteString(labelStyle.Render(k) + valueStyle.Render(v) + "\n")
	}
	writeRow("name", h.Name())
	writeRow("kind", h.Kind().String())
	writeRow("qualifier", h.Qualifier())
	writeRow("file", h.Path())

	if h.Kind() == dataset.RawKind {
		m.detail = b.String()
		return
	}
	if shape, err := h.Shape(); err == nil {
		writeRow("shape", fmt.Sprint(shape))
		for axis, get := range []func() ([2]float64, error){h.XLimData, h.YLimData, h.ZLimData} {
			if axis >= len(shape) {
				break
			}
			if lim, err := get(); err == nil {
				writeRow(fmt.Sprintf("x%d limits", axis+1), fmt.Sprintf("[%g, %g]", lim[0], lim[1]))
			}
		}
	} else {
		writeRow("shape", fmt.Sprintf("unreadable: %v", err))
	}
	if dtype, err := h.Dtype(); err == nil {
		writeRow("dtype", dtype)
	}
	m.detail = b.String()
}

func (m BrowseModel) View() string {
	var b strings.Builder
	if m.level == levelTimesteps {
		b.WriteString(titleStyle.Render("timesteps") + "\n")
		for i, step := range m.steps {
			line := fmt.Sprintf("  %d", step)
			if i == m.cursor {
				line = selectedStyle.Render("> " + fmt.Sprint(step))
			}
			b.WriteString(line + "\n")
		}
		if len(m.steps) == 0 {
			b.WriteString(dimStyle.Render("  no timesteps indexed") + "\n")
		}
		b.WriteString(helpStyle.Render("enter: open  q: quit"))
		return b.String()
	}

	b.WriteString(titleStyle.Render(fmt.Sprintf("timestep %d", m.step)) + "\n")
	var list strings.Builder
	for i, e := range m.entries {
		line := "  " + e.String()
		if i == m.cursor {
			line = selectedStyle.Render("> " + e.String())
		}
		list.WriteString(line + "\n")
	}
	if len(m.entries) == 0 {
		list.WriteString(dimStyle.Render("  empty timestep") + "\n")
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, list.String(), panelStyle.Render(m.detail))
	b.WriteString(row)
	b.WriteString(helpStyle.Render("esc: back  q: quit"))
	return b.String()
}

// Browse runs the interactive browser.
func Browse(cat *catalog.Catalog) error {
	p := tea.NewProgram(NewBrowseModel(cat))
	_, err := p.Run()
	return err
}

func indexOf(xs []int, x int) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return 0
}
