package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/spinodal/internal/analysis"
	"github.com/san-kum/spinodal/internal/metrics"
	"github.com/san-kum/spinodal/internal/sim"
	"gonum.org/v1/gonum/mat"
)

const (
	width  = 40
	height = 20
	// plotted points per chart
	plotWidth = 40
)

type TickMsg time.Time

// Model advances a prepared solver by chunk steps per tick.
type Model struct {
	solver   *sim.Solver
	initial  *mat.Dense
	chunk    int
	interval time.Duration

	field   *Canvas
	profile *Canvas
	row     int

	running  bool
	done     bool
	err      error
	showHelp bool
}

// NewModel wraps a solver that has already been prepared. initial is the
// field used on restart; nil regenerates it from the configured seed.
func NewModel(solver *sim.Solver, initial *mat.Dense, chunk int) Model {
	if chunk < 1 {
		chunk = 1
	}
	n := solver.Params().N
	m := Model{
		solver:   solver,
		initial:  initial,
		chunk:    chunk,
		interval: time.Second / 30,
		field:    NewCanvas(width, height),
		profile:  NewCanvas(width, 4),
		row:      metrics.RoughnessRow(n),
		running:  true,
	}
	m.done = m.terminal()
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) terminal() bool {
	st := m.solver.State()
	return st == nil || st.Terminal(m.solver.Params().FullSim)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.restart()
		case "[":
			m.moveRow(-1)
		case "]":
			m.moveRow(1)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && !m.done {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	if _, err := m.solver.SolveOrResume(m.chunk); err != nil {
		m.err = err
		m.done = true
		return
	}
	m.done = m.terminal()
}

func (m *Model) restart() {
	var u *mat.Dense
	if m.initial != nil {
		u = mat.DenseCopyOf(m.initial)
	}
	if err := m.solver.Prepare(u); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.done = m.terminal()
}

func (m *Model) moveRow(d int) {
	n := m.solver.Params().N
	m.row = (m.row + d + n) % n
}

// Done reports whether the run reached a terminal state or failed.
func (m Model) Done() bool { return m.done }

func (m Model) Err() error { return m.err }

func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusPaused.Render("FAILED: " + m.err.Error())
	case m.done:
		return StatusDone.Render("DONE (" + m.solver.State().StopReason.String() + ")")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("RUNNING")
}

func (m Model) View() string {
	st := m.solver.State()
	if st == nil {
		return "not prepared\n"
	}
	p := m.solver.Params()
	u := st.Field()

	m.field.Clear()
	m.profile.Clear()
	if u != nil {
		m.field.DrawField(u, p.Threshold)
		m.profile.DrawProfile(mat.Row(nil, m.row, u))
	}
	left := canvasStyle.Render(m.field.String() + "\n" + fmt.Sprintf("row %d\n", m.row) + m.profile.String())

	h := st.History()
	last, _ := h.Last()
	var s strings.Builder
	s.WriteString(headerStyle.Render(fmt.Sprintf("SPINODAL %dx%d", p.N, p.N)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if h.Len() > 1 {
		chart := asciigraph.Plot(thin(finite(h.E2()), plotWidth), asciigraph.Height(4), asciigraph.Width(plotWidth), asciigraph.Caption("E2"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Step", fmt.Sprintf("%d", st.ComputedSteps-1))
	row("Time", fmt.Sprintf("%.4g s", st.TimePassed))
	row("delt", fmt.Sprintf("%.3g", st.Delt))
	row("E", fmt.Sprintf("%.8g", last.E))
	row("E spark", SparklineChart(h.E(), 24))
	row("E2", fmt.Sprintf("%.6g", last.E2))
	row("SA", fmt.Sprintf("%.4f", last.SA))
	row("SA spark", SparklineChart(h.SA(), 24))
	if u != nil {
		row("Domain L", fmt.Sprintf("%.4g", analysis.DomainLength(u, p.L)))
	}
	if budget := p.StepBudget(); budget > 0 {
		row("Progress", ProgressBar(float64(st.ComputedSteps)/float64(budget), 24))
	}
	if st.Tau0 > 0 {
		row("tau0", Separated.Render(fmt.Sprintf("%d (t0 %.4g s)", st.Tau0, st.T0)))
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Restart Q:Quit\n[ ]:Row ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, left, statsStyle.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Restart                  ║
║  [ ]      - Move profile row         ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}
