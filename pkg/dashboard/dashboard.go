// Package dashboard is the terminal UI: a message-driven state
// machine that polls the readings and status channels on independent
// timers and folds every outcome into a single view model.
package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/inactivist/aqimon/pkg/components"
	"github.com/inactivist/aqimon/pkg/model"
)

// Banner titles for the two fetch channels.
const (
	titleReadings = "Failed to retrieve read data"
	titleStatus   = "Failed to retrieve device status"
)

// Banner is the single shared error slot. A failure on either channel
// fills it, a newer failure overwrites it, and the next success on
// either channel clears it.
type Banner struct {
	Active  bool
	Title   string
	Message string
}

// Model is the dashboard's entire state. Update derives the next
// model from the current one plus one message; any work it wants done
// comes back as a command for the runtime to run.
type Model struct {
	fetcher Fetcher
	poll    time.Duration

	lastObserved time.Time
	status       model.DeviceStatus
	statusKnown  bool
	latest       model.Reading
	readings     model.Series
	window       model.Window
	loading      bool
	hovered      []model.Reading
	banner       Banner

	width    int
	height   int
	quitting bool

	chartLines []string
	columns    [][]model.Reading

	keys   keyMap
	help   help.Model
	spin   spinner.Model
	zone   *zone.Manager
	styles Styles
}

// New builds the initial model: loading, the all-time window, and no
// data yet.
func New(f Fetcher, poll time.Duration) Model {
	styles := DefaultStyles()
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styles.Spinner
	return Model{
		fetcher: f,
		poll:    poll,
		window:  model.WindowAll,
		loading: true,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spin:    sp,
		zone:    zone.New(),
		styles:  styles,
	}
}

// Init starts both poll loops. The two synthetic ticks stand in for
// timers that have already elapsed, so the first fetches go out
// without waiting a full interval.
func (m Model) Init() tea.Cmd {
	now := time.Now()
	return tea.Batch(
		func() tea.Msg { return TickEvent{Channel: ChannelReadings, At: now} },
		func() tea.Msg { return TickEvent{Channel: ChannelStatus, At: now} },
		m.spin.Tick,
	)
}

// Update routes messages: domain events go through the reconciler,
// everything else is terminal plumbing.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case Event:
		return m.reconcileModel(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m.refreshChart(), nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

// reconcile folds one domain event into the model. It is the pure
// core of the dashboard; everything it wants done comes back as a
// command.
func (m Model) reconcile(ev Event) (Model, tea.Cmd) {
	switch ev := ev.(type) {
	case TickEvent:
		m.lastObserved = ev.At
		fetch := fetchReadingsCmd(m.fetcher, m.window)
		if ev.Channel == ChannelStatus {
			fetch = fetchStatusCmd(m.fetcher)
		}
		return m, tea.Batch(fetch, tickCmd(ev.Channel, m.poll))

	case ReadingsEvent:
		if ev.Err != nil {
			// Data already on screen stays; only the banner changes.
			m.banner = Banner{Active: true, Title: titleReadings, Message: ev.Err.Error()}
			return m.refreshChart(), nil
		}
		m.readings = ev.Series
		m.latest = ev.Series.Latest()
		m.banner = Banner{}
		return m.refreshChart(), nil

	case StatusEvent:
		if ev.Err != nil {
			m.banner = Banner{Active: true, Title: titleStatus, Message: ev.Err.Error()}
			return m.refreshChart(), nil
		}
		m.status = ev.Status
		m.statusKnown = true
		m.banner = Banner{}
		return m.refreshChart(), nil

	case WindowEvent:
		if ev.Window == m.window {
			return m, nil
		}
		m.window = ev.Window
		// Fetch right away rather than waiting for the next tick. The
		// poll timer is left alone.
		return m, fetchReadingsCmd(m.fetcher, ev.Window)

	case HoverEvent:
		m.hovered = ev.Selection
		return m, nil
	}
	return m, nil
}

// reconcileModel adapts reconcile to Update's return types.
func (m Model) reconcileModel(ev Event) (tea.Model, tea.Cmd) {
	next, cmd := m.reconcile(ev)
	return next, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m.refreshChart(), nil
	case key.Matches(msg, m.keys.Refresh):
		return m, tea.Batch(
			fetchReadingsCmd(m.fetcher, m.window),
			fetchStatusCmd(m.fetcher),
		)
	case key.Matches(msg, m.keys.WindowAll):
		return m.reconcileModel(WindowEvent{Window: model.WindowAll})
	case key.Matches(msg, m.keys.WindowHour):
		return m.reconcileModel(WindowEvent{Window: model.WindowHour})
	case key.Matches(msg, m.keys.WindowDay):
		return m.reconcileModel(WindowEvent{Window: model.WindowDay})
	case key.Matches(msg, m.keys.WindowWeek):
		return m.reconcileModel(WindowEvent{Window: model.WindowWeek})
	}
	return m, nil
}

// handleMouse maps clicks on the window tabs to window changes and
// pointer motion over the chart to hover events.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft {
		for _, w := range model.Windows() {
			if m.zone.Get(tabZone(w)).InBounds(msg) {
				return m.reconcileModel(WindowEvent{Window: w})
			}
		}
		return m, nil
	}
	if msg.Action != tea.MouseActionMotion {
		return m, nil
	}

	chart := m.zone.Get(chartZone)
	if chart.IsZero() || !chart.InBounds(msg) {
		if len(m.hovered) == 0 {
			return m, nil
		}
		return m.reconcileModel(HoverEvent{})
	}

	x, _ := chart.Pos(msg)
	var selection []model.Reading
	if x >= 0 && x < len(m.columns) {
		selection = m.columns[x]
	}
	return m.reconcileModel(HoverEvent{Selection: selection})
}

// refreshChart recomputes the rendered chart block and its hover
// buckets. All layout inputs live on the model, so this runs whenever
// data, size, help, or banner visibility change.
func (m Model) refreshChart() Model {
	if m.width <= 0 || m.height <= 0 {
		return m
	}
	h := m.height - fixedChrome - m.helpHeight() - m.bannerHeight()
	if h < 4 {
		h = 4
	}
	tc := components.TimeChart{Width: m.width, Height: h}
	m.chartLines, m.columns = tc.Plot(m.readings)
	return m
}

// fixedChrome counts the always-present lines around the chart:
// header, latest panel, status, and hover.
const fixedChrome = 7

func (m Model) helpHeight() int {
	if m.help.ShowAll {
		return 4
	}
	return 1
}

// bannerLines wraps the banner message to the usable width, keeping
// at most two lines.
func (m Model) bannerLines() []string {
	lines := components.Wrap(m.banner.Message, m.width-4)
	if len(lines) > 2 {
		lines = lines[:2]
	}
	return lines
}

func (m Model) bannerHeight() int {
	if !m.banner.Active {
		return 0
	}
	return 3 + len(m.bannerLines())
}
