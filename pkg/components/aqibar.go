package components

import "strings"

// Block characters for the eight vertical fill levels of one cell.
var barBlocks = [8]rune{
	'▁', '▂', '▃', '▄',
	'▅', '▆', '▇', '█',
}

// The standard EPA AQI palette, one color per category.
const (
	goodColor          = "#00E400"
	moderateColor      = "#FFFF00"
	sensitiveColor     = "#FF7E00"
	unhealthyColor     = "#FF0000"
	veryUnhealthyColor = "#8F3F97"
	hazardousColor     = "#7E0023"
)

// CategoryColor returns the EPA palette color for an AQI value.
func CategoryColor(aqi float64) string {
	switch {
	case aqi <= 50:
		return goodColor
	case aqi <= 100:
		return moderateColor
	case aqi <= 150:
		return sensitiveColor
	case aqi <= 200:
		return unhealthyColor
	case aqi <= 300:
		return veryUnhealthyColor
	default:
		return hazardousColor
	}
}

// AQIBar renders recent AQI values as one block per value, each block
// sized against the worst value shown and colored by its own EPA
// category. The last width values are kept when there are more.
func AQIBar(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	// A quiet day still gets a visible floor; the bar scales up only
	// once values pass the Good band.
	top := 50.0
	for _, v := range values {
		if v > top {
			top = v
		}
	}

	var b strings.Builder
	for _, v := range values {
		frac := v / top
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
		idx := int(frac * 7)
		b.WriteString(Color(CategoryColor(v)))
		b.WriteRune(barBlocks[idx])
	}
	b.WriteString(Reset())
	return b.String()
}
