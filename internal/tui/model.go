// Package tui provides the BubbleTea watch view of a running entrystackd.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/entrystack/internal/config"
	"github.com/jmylchreest/entrystack/internal/dbus"
	"github.com/jmylchreest/entrystack/internal/model"
	"github.com/jmylchreest/entrystack/internal/presenter"
)

// requestTimeout bounds every call to the daemon.
const requestTimeout = 5 * time.Second

// StateSource is the daemon as seen by the watch view. *dbus.Client
// implements it.
type StateSource interface {
	State(ctx context.Context) (presenter.State, error)
	Dismiss(ctx context.Context, d presenter.Descriptor) error
	LayoutIfNeeded(ctx context.Context) error
}

// Mode represents the current UI mode.
type Mode int

const (
	ModeList Mode = iota
	ModeDetail
)

// Model is the watch view model.
type Model struct {
	cfg    *config.Config
	source StateSource
	events <-chan dbus.ChangeEvent

	mode Mode

	// Components
	list     list.Model
	viewport viewport.Model
	help     help.Model
	keys     KeyMap

	// State
	state      presenter.State
	lastUpdate time.Time
	width      int
	height     int
	ready      bool

	// Status message
	statusMsg string
	statusErr bool
}

// entryItem is one displayed or queued entry in the list.
type entryItem struct {
	displayed bool
	id        string
	name      string
	level     string
	priority  int
	summary   string
	since     time.Time
}

func (i entryItem) Title() string {
	marker := "○"
	if i.displayed {
		marker = "●"
	}
	return marker + " " + i.label()
}

func (i entryItem) Description() string {
	status := "queued"
	if i.displayed {
		status = "displayed"
	}
	return fmt.Sprintf("%s · %s · priority %d · %s", status, i.level, i.priority, humanize.Time(i.since))
}

func (i entryItem) FilterValue() string {
	return i.name + " " + i.summary + " " + i.level + " " + i.id
}

// label is the most readable identifier of the entry.
func (i entryItem) label() string {
	switch {
	case i.name != "":
		return i.name
	case i.summary != "":
		return i.summary
	default:
		return i.id
	}
}

// descriptor picks what dismissing this entry means. Unnamed entries can
// only be dismissed as the top of the normal level.
func (i entryItem) descriptor() (presenter.Descriptor, bool) {
	if i.name != "" {
		return presenter.Specific(i.name), true
	}
	if i.displayed && i.level == model.LevelNormal.String() {
		return presenter.Displayed(), true
	}
	return presenter.Descriptor{}, false
}

// buildItems lists displayed entries first, then the queue in order.
func buildItems(state presenter.State) []list.Item {
	items := make([]list.Item, 0, len(state.Displayed)+len(state.Queued))
	for _, d := range state.Displayed {
		items = append(items, entryItem{
			displayed: true,
			id:        d.ID,
			name:      d.Name,
			level:     d.Level,
			priority:  d.Priority,
			since:     d.DisplayedAt,
		})
	}
	for _, q := range state.Queued {
		items = append(items, entryItem{
			id:       q.ID,
			name:     q.Name,
			level:    q.Level,
			priority: q.Priority,
			summary:  q.Summary,
			since:    q.QueuedAt,
		})
	}
	return items
}

// New creates a watch view. events may be nil, in which case the view only
// polls at the configured interval.
func New(cfg *config.Config, source StateSource, events <-chan dbus.ChangeEvent) Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "entrystack"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()

	h := help.New()
	h.ShowAll = false

	return Model{
		cfg:    cfg,
		source: source,
		events: events,
		mode:   ModeList,
		list:   l,
		help:   h,
		keys:   DefaultKeyMap(),
	}
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchState,
		m.waitForChange,
		m.tick(),
	)
}

type stateMsg struct {
	state presenter.State
	err   error
}

type changeMsg dbus.ChangeEvent

type tickMsg struct{}

type actionMsg struct {
	text string
	err  error
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type copyResultMsg struct {
	err error
}

// fetchState asks the daemon for a snapshot.
func (m Model) fetchState() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	state, err := m.source.State(ctx)
	return stateMsg{state: state, err: err}
}

// waitForChange blocks until the daemon reports a change.
func (m Model) waitForChange() tea.Msg {
	if m.events == nil {
		return nil
	}
	ev, ok := <-m.events
	if !ok {
		return nil
	}
	return changeMsg(ev)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.cfg.Watch.Interval.Duration(), func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		m.list.SetSize(msg.Width, msg.Height-4)
		m.viewport = viewport.New(msg.Width, msg.Height-4)
		m.viewport.YPosition = 2
		m.help.Width = msg.Width
		return m, nil

	case stateMsg:
		if msg.err != nil {
			return m, statusCmd("Failed to fetch state: "+msg.err.Error(), true)
		}
		m.state = msg.state
		m.lastUpdate = time.Now()
		cmd := m.list.SetItems(buildItems(msg.state))
		return m, cmd

	case changeMsg:
		return m, tea.Batch(m.fetchState, m.waitForChange)

	case tickMsg:
		return m, tea.Batch(m.fetchState, m.tick())

	case actionMsg:
		if msg.err != nil {
			return m, statusCmd(msg.text+" failed: "+msg.err.Error(), true)
		}
		return m, tea.Batch(statusCmd(msg.text, false), m.fetchState)

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, statusCmd("Copy failed: "+msg.err.Error(), true)
		}
		return m, statusCmd("Copied to clipboard", false)
	}

	var cmd tea.Cmd
	switch m.mode {
	case ModeList:
		m.list, cmd = m.list.Update(msg)
	case ModeDetail:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func statusCmd(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the list filter is open every key belongs to it.
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.DismissTop):
		return m, m.dismiss(presenter.Displayed())
	case key.Matches(msg, m.keys.DismissAll):
		return m, m.dismiss(presenter.All())
	case key.Matches(msg, m.keys.ClearQueue):
		return m, m.dismiss(presenter.EnqueuedOnly())
	case key.Matches(msg, m.keys.Relayout):
		return m, m.relayout()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetchState
	case key.Matches(msg, m.keys.CopyYAML):
		data, err := yaml.Marshal(m.state)
		if err != nil {
			return m, statusCmd("Failed to marshal YAML: "+err.Error(), true)
		}
		return m, m.copyToClipboard(string(data))
	}

	switch m.mode {
	case ModeList:
		return m.handleListKey(msg)
	case ModeDetail:
		return m.handleDetailKey(msg)
	}
	return m, nil
}

// handleListKey handles keys in list mode.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item, hasItem := m.list.SelectedItem().(entryItem)

	switch {
	case key.Matches(msg, m.keys.Enter):
		if hasItem {
			m.mode = ModeDetail
			m.viewport.SetContent(m.renderDetail(item))
			m.viewport.GotoTop()
		}
		return m, nil

	case key.Matches(msg, m.keys.Dismiss):
		if !hasItem {
			return m, nil
		}
		d, ok := item.descriptor()
		if !ok {
			return m, statusCmd("Unnamed "+item.level+" entries can only be dismissed with D", true)
		}
		return m, m.dismiss(d)

	case key.Matches(msg, m.keys.CopyID):
		if hasItem {
			return m, m.copyToClipboard(item.id)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleDetailKey handles keys in detail mode.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.mode = ModeList
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) dismiss(d presenter.Descriptor) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return actionMsg{text: "Dismissed " + d.String(), err: m.source.Dismiss(ctx, d)}
	}
}

func (m Model) relayout() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return actionMsg{text: "Relayout requested", err: m.source.LayoutIfNeeded(ctx)}
	}
}

func (m Model) copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		return copyResultMsg{err: copyText(text, m.cfg)}
	}
}

// renderDetail renders an entry for the detail view.
func (m Model) renderDetail(item entryItem) string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12"))
	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	var b strings.Builder
	b.WriteString(headerStyle.Render(item.label()) + "\n\n")
	b.WriteString(labelStyle.Render("ID: ") + item.id + "\n")
	if item.name != "" {
		b.WriteString(labelStyle.Render("Name: ") + item.name + "\n")
	}
	b.WriteString(labelStyle.Render("Level: ") + item.level + "\n")
	b.WriteString(labelStyle.Render("Priority: ") + fmt.Sprint(item.priority) + "\n")

	if item.displayed {
		for _, d := range m.state.Displayed {
			if d.ID == item.id {
				b.WriteString(labelStyle.Render("Precedence: ") + d.Precedence + "\n")
			}
		}
		b.WriteString(labelStyle.Render("Displayed: ") + humanize.Time(item.since) + "\n")
	} else {
		b.WriteString(labelStyle.Render("Queued: ") + humanize.Time(item.since) + "\n")
		if item.summary != "" {
			b.WriteString("\n" + labelStyle.Render("Summary:") + "\n" + item.summary + "\n")
		}
	}
	return b.String()
}

// renderHeader summarizes surfaces, fallback and insets.
func (m Model) renderHeader() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	surfaces := make([]string, 0, len(m.state.Surfaces))
	for _, s := range m.state.Surfaces {
		label := s.Level
		if s.Responsive {
			label += "*"
		}
		surfaces = append(surfaces, activeStyle.Render(label))
	}
	if len(surfaces) == 0 {
		surfaces = append(surfaces, "none")
	}

	insets := m.state.Insets
	updated := "never"
	if !m.lastUpdate.IsZero() {
		updated = humanize.Time(m.lastUpdate)
	}
	return style.Render("surfaces: ") + strings.Join(surfaces, " ") +
		style.Render(fmt.Sprintf("  fallback: %s  insets: %d/%d/%d/%d  updated %s",
			m.state.Fallback, insets.Top, insets.Left, insets.Bottom, insets.Right, updated))
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var body string
	switch m.mode {
	case ModeDetail:
		title := lipgloss.NewStyle().Bold(true).Padding(0, 1).Render("Entry Detail")
		body = title + "\n" + m.viewport.View()
	default:
		body = m.renderHeader() + "\n" + m.list.View()
	}

	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		return body + "\n" + statusStyle.Render(m.statusMsg)
	}
	if !m.cfg.Watch.ShowHelp && !m.help.ShowAll {
		return body
	}
	return body + "\n" + m.help.View(m.keys)
}

// RunOptions contains options for running the watch view.
type RunOptions struct {
	Config *config.Config
	Source StateSource
	Events <-chan dbus.ChangeEvent // nil falls back to polling only
}

// Run starts the watch view and blocks until the user quits.
func Run(opts RunOptions) error {
	m := New(opts.Config, opts.Source, opts.Events)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("watch view: %w", err)
	}
	return nil
}
