package dashboard

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/inactivist/aqimon/pkg/model"
)

// Fetcher is the slice of the API client the dashboard needs.
type Fetcher interface {
	Readings(ctx context.Context, w model.Window) (model.Series, error)
	Status(ctx context.Context) (model.DeviceStatus, error)
}

// tickCmd re-arms one channel's poll timer. A channel schedules its
// next tick only while handling the previous one, so the two timers
// drift apart freely.
func tickCmd(ch Channel, every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return TickEvent{Channel: ch, At: t}
	})
}

// fetchReadingsCmd runs one readings fetch off the update loop.
// In-flight fetches are never canceled by newer ones; whichever
// response settles last is the one displayed.
func fetchReadingsCmd(f Fetcher, w model.Window) tea.Cmd {
	return func() tea.Msg {
		series, err := f.Readings(context.Background(), w)
		return ReadingsEvent{Series: series, Err: err}
	}
}

// fetchStatusCmd runs one status fetch off the update loop.
func fetchStatusCmd(f Fetcher) tea.Cmd {
	return func() tea.Msg {
		status, err := f.Status(context.Background())
		return StatusEvent{Status: status, Err: err}
	}
}
