// Package epa computes the US EPA Air Quality Index from particulate
// concentrations using the piecewise-linear breakpoint tables for PM2.5 and
// PM10.
package epa

import (
	"fmt"
	"math"
)

// breakpoint maps a concentration band [CLo, CHi] onto an index band
// [ILo, IHi].
type breakpoint struct {
	cLo, cHi float64
	iLo, iHi float64
}

// PM2.5 breakpoints in µg/m³, 24-hour average. Concentrations are truncated
// to one decimal before lookup per the EPA rounding convention.
var pm25Breakpoints = []breakpoint{
	{0.0, 12.0, 0, 50},
	{12.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 150.4, 151, 200},
	{150.5, 250.4, 201, 300},
	{250.5, 350.4, 301, 400},
	{350.5, 500.4, 401, 500},
}

// PM10 breakpoints in µg/m³, truncated to integers before lookup.
var pm10Breakpoints = []breakpoint{
	{0, 54, 0, 50},
	{55, 154, 51, 100},
	{155, 254, 101, 150},
	{255, 354, 151, 200},
	{355, 424, 201, 300},
	{425, 504, 301, 400},
	{505, 604, 401, 500},
}

// PM25 returns the AQI sub-index for a PM2.5 concentration in µg/m³.
func PM25(concentration float64) float64 {
	return index(truncate(concentration, 1), pm25Breakpoints)
}

// PM10 returns the AQI sub-index for a PM10 concentration in µg/m³.
func PM10(concentration float64) float64 {
	return index(truncate(concentration, 0), pm10Breakpoints)
}

// AQI returns the overall index for a sample: the greater of the two
// pollutant sub-indices.
func AQI(pm25, pm10 float64) float64 {
	return math.Max(PM25(pm25), PM10(pm10))
}

// Category returns the EPA descriptor for an index value.
func Category(aqi float64) string {
	switch {
	case aqi <= 50:
		return "Good"
	case aqi <= 100:
		return "Moderate"
	case aqi <= 150:
		return "Unhealthy for Sensitive Groups"
	case aqi <= 200:
		return "Unhealthy"
	case aqi <= 300:
		return "Very Unhealthy"
	default:
		return "Hazardous"
	}
}

// index interpolates the AQI for a truncated concentration. Values beyond
// the top breakpoint clamp to 500, the scale's ceiling.
func index(c float64, bps []breakpoint) float64 {
	if c <= 0 {
		return 0
	}
	for _, b := range bps {
		if c <= b.cHi {
			return math.Round(b.iLo + (c-b.cLo)*(b.iHi-b.iLo)/(b.cHi-b.cLo))
		}
	}
	return 500
}

// truncate drops digits beyond the given number of decimals without
// rounding, matching how the EPA tables are defined.
func truncate(v float64, decimals int) float64 {
	if v <= 0 {
		return 0
	}
	shift := math.Pow(10, float64(decimals))
	return math.Trunc(v*shift) / shift
}

// Format renders an index value the way the dashboard displays it: whole
// numbers without a decimal point.
func Format(aqi float64) string {
	return fmt.Sprintf("%.0f", aqi)
}
