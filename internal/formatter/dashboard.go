package formatter

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"math"

	"github.com/desertthunder/festlist/internal/analytics"
	"github.com/desertthunder/festlist/internal/models"
)

//go:embed templates/dashboard.html
var dashboardTemplate string

var dashboard = template.Must(template.New("dashboard").Parse(dashboardTemplate))

const (
	plotWidth  = 600
	plotHeight = 320
	plotLeft   = 55.0
	plotRight  = 20.0
	plotTop    = 20.0
	plotBottom = 45.0
)

// artistColors assigns each artist a plot color in table order; it wraps after the last one.
var artistColors = []string{
	"#00ff00", "#ff0000", "#0000ff", "#ffa500", "#800080", "#8b0000",
	"#008080", "#008000", "#9acd32", "#000080", "#808080", "#8000ff",
	"#ff00ff", "#00ffff", "#ffff00", "#ff6347", "#4682b4", "#800000",
	"#556b2f", "#ff69b4", "#9932cc", "#483d8b", "#32cd32", "#ff4500",
	"#9400d3", "#00ced1", "#2e8b57", "#7fff00", "#6a5acd", "#dc143c",
	"#8a2be2", "#ff8c00", "#ffd700", "#000000", "#b22222", "#8b4513",
	"#adff2f", "#8b008b", "#ff1493", "#228b22",
}

type legendEntry struct {
	Name  string
	Color string
}

type svgPoint struct {
	X, Y  float64
	Color string
	Label string
}

type svgTick struct {
	Pos   float64
	Label string
}

type svgPlot struct {
	Title  string
	YTitle string
	Width  int
	Height int
	X0, X1 float64
	Y0, Y1 float64
	Points []svgPoint
	Bands  []svgTick
	XTicks []svgTick
	YTicks []svgTick
	Trend  string
}

type dashboardView struct {
	*analytics.Dashboard
	FeatureLabels []string
	TrendMessages []string
	Legend        []legendEntry
	Plots         []svgPlot
}

// RenderDashboard writes a self-contained HTML dashboard with inline CSS and SVG plots.
func RenderDashboard(w io.Writer, d *analytics.Dashboard) error {
	view := dashboardView{Dashboard: d}

	colors := make(map[string]string)
	for i, a := range d.Artists {
		c := artistColors[i%len(artistColors)]
		colors[a.Name] = c
		view.Legend = append(view.Legend, legendEntry{Name: a.Name, Color: c})
	}
	for _, f := range d.Features {
		view.FeatureLabels = append(view.FeatureLabels, fmt.Sprintf("Average %s (%s)", analytics.FeatureLabel(f), analytics.FeatureUnit(f)))
	}
	for _, t := range d.Trends {
		view.TrendMessages = append(view.TrendMessages, t.Message())
	}
	for _, p := range d.Plots {
		view.Plots = append(view.Plots, layoutPlot(p, colors))
	}

	if err := dashboard.Execute(w, view); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	return nil
}

func layoutPlot(p analytics.Plot, colors map[string]string) svgPlot {
	out := svgPlot{
		Title:  fmt.Sprintf("%s vs. Song Popularity", p.Label),
		YTitle: fmt.Sprintf("%s (%s)", p.Label, p.Unit),
		Width:  plotWidth,
		Height: plotHeight,
		X0:     plotLeft,
		X1:     plotWidth - plotRight,
		Y0:     plotTop,
		Y1:     plotHeight - plotBottom,
	}

	lo, hi := 0.0, 1.0
	if p.Feature == models.FeatureTempo {
		lo, hi = valueRange(p)
	}

	x := func(pop int) float64 { return out.X0 + float64(pop)/100*(out.X1-out.X0) }
	y := func(v float64) float64 { return out.Y1 - (v-lo)/(hi-lo)*(out.Y1-out.Y0) }

	for _, pt := range p.Points {
		out.Points = append(out.Points, svgPoint{
			X:     x(pt.Popularity),
			Y:     y(pt.Value),
			Color: colors[pt.Artist],
			Label: fmt.Sprintf("%s - %s (%s)", pt.Artist, pt.Title, analytics.FormatFeature(p.Feature, pt.Value)),
		})
	}

	for pop := 0; pop <= 100; pop += 20 {
		out.XTicks = append(out.XTicks, svgTick{Pos: x(pop), Label: fmt.Sprintf("%d", pop)})
	}
	for i := 0; i <= 4; i++ {
		v := lo + (hi-lo)*float64(i)/4
		out.YTicks = append(out.YTicks, svgTick{Pos: y(v), Label: analytics.FormatFeature(p.Feature, v)})
	}

	if p.Trend.Strong {
		out.Bands = []svgTick{
			{Pos: y(p.Trend.Lower), Label: analytics.FormatFeature(p.Feature, p.Trend.Lower)},
			{Pos: y(p.Trend.Upper), Label: analytics.FormatFeature(p.Feature, p.Trend.Upper)},
		}
		out.Trend = p.Trend.Message()
	}
	return out
}

// valueRange pads the observed tempo range, band included, to whole tens.
func valueRange(p analytics.Plot) (float64, float64) {
	if len(p.Points) == 0 {
		return 0, 200
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, pt := range p.Points {
		lo, hi = math.Min(lo, pt.Value), math.Max(hi, pt.Value)
	}
	if p.Trend.Strong {
		lo, hi = math.Min(lo, p.Trend.Lower), math.Max(hi, p.Trend.Upper)
	}
	lo = math.Max(math.Floor(lo/10)*10-10, 0)
	hi = math.Ceil(hi/10)*10 + 10
	return lo, hi
}
