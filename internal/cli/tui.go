package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/graphmorph/pkg/layout"
	"github.com/matzehuels/graphmorph/pkg/pipeline"
)

// =============================================================================
// Layout Progress Model
// =============================================================================

type layoutStatus int

const (
	statusPending layoutStatus = iota
	statusRunning
	statusDone
	statusCached
	statusFailed
)

type layoutRow struct {
	name     layout.Name
	status   layoutStatus
	duration time.Duration
	err      error
}

// layoutEventMsg carries a runner event into the bubbletea loop.
type layoutEventMsg layout.Event

// runDoneMsg ends the program with the pipeline outcome.
type runDoneMsg struct {
	res *pipeline.Result
	err error
}

type tickMsg time.Time

// progressModel shows one row per requested layout while the pipeline runs.
type progressModel struct {
	rows    []layoutRow
	index   map[layout.Name]int
	started time.Time
	frame   int

	res  *pipeline.Result
	err  error
	done bool
	quit bool
}

func newProgressModel(names []layout.Name) progressModel {
	m := progressModel{
		rows:    make([]layoutRow, len(names)),
		index:   make(map[layout.Name]int, len(names)),
		started: time.Now(),
	}
	for i, n := range names {
		m.rows[i] = layoutRow{name: n}
		m.index[n] = i
	}
	return m
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m progressModel) Init() tea.Cmd {
	return tick()
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quit = true
			return m, tea.Quit
		}
	case tickMsg:
		m.frame++
		return m, tick()
	case layoutEventMsg:
		i, ok := m.index[msg.Layout]
		if !ok {
			return m, nil
		}
		row := &m.rows[i]
		switch msg.State {
		case layout.Started:
			row.status = statusRunning
		case layout.Done:
			row.status = statusDone
			if msg.Cached {
				row.status = statusCached
			}
			row.duration = msg.Duration
		case layout.Failed:
			row.status = statusFailed
			row.duration = msg.Duration
			row.err = msg.Err
		}
	case runDoneMsg:
		m.res, m.err, m.done = msg.res, msg.err, true
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Computing layouts"))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %s", time.Since(m.started).Round(100*time.Millisecond))))
	b.WriteString("\n")

	rows := make([][]string, len(m.rows))
	for i, r := range m.rows {
		rows[i] = []string{m.icon(r.status), string(r.name), statusText(r), durationText(r)}
	}
	b.WriteString(renderTable([]string{"", "Layout", "Status", "Time"}, rows))
	b.WriteString("\n")

	if !m.done {
		b.WriteString(StyleDim.Render("q to abort"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m progressModel) icon(s layoutStatus) string {
	switch s {
	case statusRunning:
		return styleIconSpinner.Render(spinnerFrames[m.frame%len(spinnerFrames)])
	case statusDone, statusCached:
		return styleIconSuccess.Render(iconSuccess)
	case statusFailed:
		return styleIconError.Render(iconError)
	default:
		return StyleDim.Render(iconPending)
	}
}

func statusText(r layoutRow) string {
	switch r.status {
	case statusRunning:
		return "running"
	case statusDone:
		return styleComputed.Render("computed")
	case statusCached:
		return styleCached.Render("cached")
	case statusFailed:
		return StyleError.Render("failed")
	default:
		return StyleDim.Render("pending")
	}
}

func durationText(r layoutRow) string {
	if r.status < statusDone {
		return ""
	}
	return r.duration.Round(time.Millisecond).String()
}

// =============================================================================
// Runner Integration
// =============================================================================

// executeWithTUI runs exec under a bubbletea progress view fed by the
// runner's layout events. Quitting the view cancels the run.
func executeWithTUI(ctx context.Context, runner *pipeline.Runner, names []layout.Name, exec func(context.Context) (*pipeline.Result, error)) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(names), tea.WithContext(ctx), tea.WithOutput(os.Stderr))

	prev := runner.Notify
	runner.Notify = func(e layout.Event) { p.Send(layoutEventMsg(e)) }
	defer func() { runner.Notify = prev }()

	go func() {
		res, err := exec(ctx)
		p.Send(runDoneMsg{res: res, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(progressModel)
	if m.quit {
		return nil, context.Canceled
	}
	return m.res, m.err
}
