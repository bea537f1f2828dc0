// ABOUTME: Inline SVG trend charts for the dashboard.
// ABOUTME: Renders a sleep line chart and an exercise bar chart from record series.
package web

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

const (
	chartWidth     = 640
	chartHeight    = 220
	chartPadLeft   = 44
	chartPadTop    = 12
	chartPadRight  = 12
	chartPadBottom = 28
)

// chartPoint is one sample. Day is the offset in days from the first sample,
// so gaps between dates show up on the x axis.
type chartPoint struct {
	Label string
	Day   int
	Value float64
}

// chartScale maps day offsets and values into the plot area.
type chartScale struct {
	days int
	max  float64
	x0  float64
	y0  float64
	w   float64
	h   float64
}

func newChartScale(pts []chartPoint) chartScale {
	peak := 0.0
	span := 0
	for _, p := range pts {
		peak = math.Max(peak, p.Value)
		if p.Day > span {
			span = p.Day
		}
	}
	return chartScale{
		days: span + 1,
		max:  niceCeil(peak),
		x0:   chartPadLeft,
		y0:   chartPadTop,
		w:    chartWidth - chartPadLeft - chartPadRight,
		h:    chartHeight - chartPadTop - chartPadBottom,
	}
}

// niceCeil rounds v up to 1, 2, or 5 times a power of ten.
func niceCeil(v float64) float64 {
	if v <= 0 {
		return 1
	}
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 5, 10} {
		if v <= m*exp {
			return m * exp
		}
	}
	return 10 * exp
}

// slot is the width of one day.
func (s chartScale) slot() float64 {
	return s.w / float64(s.days)
}

// x returns the centre of the slot for day.
func (s chartScale) x(day int) float64 {
	return s.x0 + s.slot()*(float64(day)+0.5)
}

func (s chartScale) y(v float64) float64 {
	return s.y0 + s.h*(1-v/s.max)
}

func (s chartScale) frame(b *strings.Builder, unit string, pts []chartPoint) {
	fmt.Fprintf(b, `<svg class="chart" viewBox="0 0 %d %d" role="img" xmlns="http://www.w3.org/2000/svg">`, chartWidth, chartHeight)
	bottom := s.y0 + s.h
	fmt.Fprintf(b, `<line class="axis" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`, s.x0, bottom, s.x0+s.w, bottom)
	fmt.Fprintf(b, `<line class="axis" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`, s.x0, s.y0, s.x0, bottom)
	fmt.Fprintf(b, `<text class="tick" x="%.1f" y="%.1f" text-anchor="end">%s</text>`, s.x0-4, s.y0+4, template.HTMLEscapeString(fmt.Sprintf("%g %s", s.max, unit)))
	fmt.Fprintf(b, `<text class="tick" x="%.1f" y="%.1f" text-anchor="end">0</text>`, s.x0-4, bottom)

	first, last := pts[0].Label, pts[len(pts)-1].Label
	fmt.Fprintf(b, `<text class="tick" x="%.1f" y="%d" text-anchor="start">%s</text>`, s.x0, chartHeight-8, template.HTMLEscapeString(first))
	if len(pts) > 1 {
		fmt.Fprintf(b, `<text class="tick" x="%.1f" y="%d" text-anchor="end">%s</text>`, s.x0+s.w, chartHeight-8, template.HTMLEscapeString(last))
	}
}

func pointTitle(p chartPoint, unit string) string {
	return template.HTMLEscapeString(fmt.Sprintf("%s: %g %s", p.Label, p.Value, unit))
}

// lineChart renders pts as a polyline with a marker per point.
func lineChart(pts []chartPoint, unit string) template.HTML {
	if len(pts) == 0 {
		return ""
	}
	s := newChartScale(pts)

	var b strings.Builder
	s.frame(&b, unit, pts)

	coords := make([]string, 0, len(pts))
	for _, p := range pts {
		coords = append(coords, fmt.Sprintf("%.1f,%.1f", s.x(p.Day), s.y(p.Value)))
	}
	fmt.Fprintf(&b, `<polyline class="line" fill="none" points="%s"/>`, strings.Join(coords, " "))
	for _, p := range pts {
		fmt.Fprintf(&b, `<circle class="dot" cx="%.1f" cy="%.1f" r="3"><title>%s</title></circle>`, s.x(p.Day), s.y(p.Value), pointTitle(p, unit))
	}

	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}

// barChart renders pts as one bar per point.
func barChart(pts []chartPoint, unit string) template.HTML {
	if len(pts) == 0 {
		return ""
	}
	s := newChartScale(pts)

	var b strings.Builder
	s.frame(&b, unit, pts)

	width := math.Max(s.slot()*0.7, 1)
	bottom := s.y0 + s.h
	for _, p := range pts {
		top := s.y(p.Value)
		fmt.Fprintf(&b, `<rect class="bar" x="%.1f" y="%.1f" width="%.1f" height="%.1f"><title>%s</title></rect>`,
			s.x(p.Day)-width/2, top, width, bottom-top, pointTitle(p, unit))
	}

	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}
