package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/inactivist/aqimon/pkg/components"
	"github.com/inactivist/aqimon/pkg/epa"
	"github.com/inactivist/aqimon/pkg/model"
)

// Mouse zone identifiers. The chart zone covers the raw chart lines,
// so a pointer x position inside it indexes the hover buckets
// directly.
const chartZone = "chart"

func tabZone(w model.Window) string { return "tab:" + w.String() }

// View renders the whole dashboard and registers the mouse zones.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width <= 0 || m.height <= 0 {
		return "initializing..."
	}

	sections := []string{m.viewHeader()}
	if m.banner.Active {
		sections = append(sections, m.viewBanner())
	}
	sections = append(sections,
		m.zone.Mark(chartZone, strings.Join(m.chartLines, "\n")),
		m.viewLatest(),
		m.viewStatus(),
		m.viewHover(),
		m.styles.Help.Render(m.help.View(m.keys)),
	)
	return m.zone.Scan(strings.Join(sections, "\n"))
}

// viewHeader lays the title, the clickable window tabs, and the
// spinner on the left, with the last poll time pinned right.
func (m Model) viewHeader() string {
	var marked, plain []string
	for _, w := range model.Windows() {
		style := m.styles.Tab
		if w == m.window {
			style = m.styles.TabActive
		}
		tab := style.Render(w.String())
		plain = append(plain, tab)
		marked = append(marked, m.zone.Mark(tabZone(w), tab))
	}

	clock := "--:--:--"
	if !m.lastObserved.IsZero() {
		clock = m.lastObserved.Format("15:04:05")
	}
	title := m.styles.Title.Render("aqimon")
	right := m.styles.Clock.Render(clock)

	// Widths come from the unmarked strings; zone markers are not
	// zero-width until Scan strips them.
	left := title + " " + strings.Join(marked, "") + " " + m.spin.View()
	plainLeft := title + " " + strings.Join(plain, "") + " " + m.spin.View()
	gap := m.width - components.VisibleLen(plainLeft) - components.VisibleLen(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

// viewBanner renders the shared error slot.
func (m Model) viewBanner() string {
	body := append(
		[]string{m.styles.BannerTitle.Render(m.banner.Title)},
		m.bannerLines()...,
	)
	return m.styles.Banner.Width(m.width - 2).Render(strings.Join(body, "\n"))
}

// viewLatest shows the newest reading beside a bar of recent AQI
// values, each colored by its category.
func (m Model) viewLatest() string {
	first := m.styles.Muted.Render("no readings yet")
	second := ""
	if !m.latest.IsZero() {
		badge := lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color(components.CategoryColor(m.latest.EPA))).
			Render(fmt.Sprintf("EPA %s %s", epa.Format(m.latest.EPA), epa.Category(m.latest.EPA)))
		first = fmt.Sprintf("%s   PM2.5 %.1f ug/m3   PM10 %.1f ug/m3",
			badge, m.latest.PM25, m.latest.PM10)

		values := make([]float64, 0, len(m.readings))
		for _, r := range m.readings {
			values = append(values, r.EPA)
		}
		second = components.AQIBar(values, m.width-6)
	}
	content := components.Truncate(first, m.width-4) + "\n" + components.Truncate(second, m.width-4)
	return m.styles.Panel.Width(m.width - 2).Render(content)
}

// viewStatus is the one-line device summary under the latest panel.
func (m Model) viewStatus() string {
	state := m.styles.Muted.Render("device unknown")
	if m.statusKnown {
		label := "device " + m.status.State.String()
		switch m.status.State {
		case model.StateReading:
			state = m.styles.Busy.Render(label)
		case model.StateFailing:
			state = m.styles.Bad.Render(label)
			if m.status.LastException != "" {
				state += m.styles.Muted.Render(" (" + m.status.LastException + ")")
			}
		default:
			state = m.styles.Good.Render(label)
		}
	}
	counts := m.styles.Muted.Render(
		fmt.Sprintf("%d readings in the %s window", len(m.readings), m.window))
	return components.Truncate(state+"  "+counts, m.width)
}

// viewHover details the readings bucketed under the pointer.
func (m Model) viewHover() string {
	if len(m.hovered) == 0 {
		return m.styles.Muted.Render("hover over the chart to inspect readings")
	}
	r := m.hovered[0]
	line := fmt.Sprintf("%s  EPA %s  PM2.5 %.1f  PM10 %.1f",
		r.Time().Local().Format("15:04:05"), epa.Format(r.EPA), r.PM25, r.PM10)
	if extra := len(m.hovered) - 1; extra > 0 {
		line += m.styles.Muted.Render(fmt.Sprintf("  +%d more in this column", extra))
	}
	return components.Truncate(line, m.width)
}
