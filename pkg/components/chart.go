package components

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/inactivist/aqimon/pkg/model"
)

// Trace colors for the two particulate series.
const (
	PM25Color = "#4FC3F7"
	PM10Color = "#FFB74D"

	// mixedColor marks cells where both traces overlap.
	mixedColor = "#B39DDB"
)

// yAxisWidth is the label gutter on the left edge of the chart.
const yAxisWidth = 6

// TimeChart renders a reading series as a two-trace braille chart.
// Each terminal cell carries a 2x4 dot grid, so a WxH chart plots
// onto 2W x 4H addressable points.
type TimeChart struct {
	Width  int
	Height int
}

// Plot renders series into terminal lines and reports which readings
// fell into each screen column, indexed from the left edge of the
// rendered lines. The dashboard feeds the buckets to mouse hover.
func (tc TimeChart) Plot(series model.Series) ([]string, [][]model.Reading) {
	columns := make([][]model.Reading, tc.Width)
	if tc.Width < yAxisWidth+4 || tc.Height < 3 {
		return nil, columns
	}

	chartW := tc.Width - yAxisWidth
	chartH := tc.Height - 1 // the bottom line carries time labels

	if len(series) == 0 {
		lines := make([]string, tc.Height)
		lines[chartH/2] = PadCenter(Dim("waiting for readings"), tc.Width)
		return lines, columns
	}

	tMin, tMax := series[0].Time(), series[0].Time()
	for _, r := range series[1:] {
		if r.Time().Before(tMin) {
			tMin = r.Time()
		}
		if r.Time().After(tMax) {
			tMax = r.Time()
		}
	}

	// Concentrations sit on a zero floor; only the top needs headroom.
	yMax := 1.0
	for _, r := range series {
		yMax = math.Max(yMax, math.Max(r.PM25, r.PM10))
	}
	yMax *= 1.1

	dotsW := chartW * 2
	dotsH := chartH * 4
	tRange := tMax.Sub(tMin).Seconds()

	grid := make([][]uint8, chartH)
	traces := make([][]uint8, chartH) // bit 1 = PM2.5, bit 2 = PM10
	for r := range grid {
		grid[r] = make([]uint8, chartW)
		traces[r] = make([]uint8, chartW)
	}

	plot := func(r model.Reading, value float64, trace uint8) int {
		dotX := dotsW / 2
		if tRange > 0 {
			frac := r.Time().Sub(tMin).Seconds() / tRange
			dotX = int(frac * float64(dotsW-1))
		}
		frac := value / yMax
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
		dotY := int((1 - frac) * float64(dotsH-1))

		col, row := dotX/2, dotY/4
		grid[row][col] |= brailleBit(dotX%2, dotY%4)
		traces[row][col] |= trace
		return col
	}

	for _, r := range series {
		col := plot(r, r.PM25, 1)
		plot(r, r.PM10, 2) // same timestamp, same column
		columns[yAxisWidth+col] = append(columns[yAxisWidth+col], r)
	}

	lines := make([]string, 0, tc.Height)
	for row := 0; row < chartH; row++ {
		var sb strings.Builder
		label := axisLabel(yMax * float64(chartH-1-row) / float64(chartH-1))
		sb.WriteString(PadLeft(label, yAxisWidth-1))
		sb.WriteString(" ")
		for col := 0; col < chartW; col++ {
			cell := rune(0x2800 + int(grid[row][col]))
			switch traces[row][col] {
			case 1:
				sb.WriteString(Color(PM25Color) + string(cell) + Reset())
			case 2:
				sb.WriteString(Color(PM10Color) + string(cell) + Reset())
			case 3:
				sb.WriteString(Color(mixedColor) + string(cell) + Reset())
			default:
				sb.WriteRune(cell)
			}
		}
		lines = append(lines, strings.TrimRight(sb.String(), " "))
	}
	lines = append(lines, timeAxis(tMin, tMax, chartW))

	return lines, columns
}

// brailleBit returns the bitmask for a dot at (offX, offY) inside one
// braille cell. offX is 0 (left) or 1 (right), offY runs 0..3 top to
// bottom.
//
// Unicode braille dot numbering:
//
//	1 4      bit: 0x01  0x08
//	2 5           0x02  0x10
//	3 6           0x04  0x20
//	7 8           0x40  0x80
func brailleBit(offX, offY int) uint8 {
	leftBits := [4]uint8{0x01, 0x02, 0x04, 0x40}
	rightBits := [4]uint8{0x08, 0x10, 0x20, 0x80}

	if offY < 0 || offY > 3 {
		return 0
	}
	if offX == 0 {
		return leftBits[offY]
	}
	return rightBits[offY]
}

// timeAxis lays the oldest, middle, and newest timestamps under the
// chart area.
func timeAxis(tMin, tMax time.Time, chartW int) string {
	span := tMax.Sub(tMin)

	axis := make([]byte, yAxisWidth+chartW)
	for i := range axis {
		axis[i] = ' '
	}
	place := func(text string, at int) {
		start := at - len(text)/2
		if start+len(text) > len(axis) {
			start = len(axis) - len(text)
		}
		if start < yAxisWidth {
			start = yAxisWidth
		}
		copy(axis[start:], text)
	}
	place(formatStamp(tMin, span), yAxisWidth)
	if chartW >= 32 {
		place(formatStamp(tMin.Add(span/2), span), yAxisWidth+chartW/2)
	}
	place(formatStamp(tMax, span), yAxisWidth+chartW-1)
	return strings.TrimRight(string(axis), " ")
}

// formatStamp picks a label granularity that suits the visible span.
func formatStamp(t time.Time, span time.Duration) string {
	t = t.Local()
	switch {
	case span <= 48*time.Hour:
		return t.Format("15:04")
	case span <= 14*24*time.Hour:
		return t.Format("Mon 15:04")
	default:
		return t.Format("Jan 2")
	}
}

// axisLabel formats a concentration for the y-axis gutter.
func axisLabel(v float64) string {
	switch {
	case v >= 1000:
		return fmt.Sprintf("%.1fK", v/1000)
	case v >= 10:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}
