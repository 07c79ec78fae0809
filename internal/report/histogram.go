// Package report renders frame histograms for people: an interactive HTML
// page and a static PNG.
package report

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"reefview/internal/frame"
)

type series struct {
	name  string
	hex   string
	rgba  color.RGBA
	value func(h *frame.Histogram, i int) float64
}

var histogramSeries = []series{
	{"blue", "#1f5fd1", color.RGBA{R: 31, G: 95, B: 209, A: 255}, func(h *frame.Histogram, i int) float64 { return float64(h.B[i]) }},
	{"green", "#2e9e44", color.RGBA{R: 46, G: 158, B: 68, A: 255}, func(h *frame.Histogram, i int) float64 { return float64(h.G[i]) }},
	{"red", "#d13a1f", color.RGBA{R: 209, G: 58, B: 31, A: 255}, func(h *frame.Histogram, i int) float64 { return float64(h.R[i]) }},
	{"density", "#777777", color.RGBA{R: 119, G: 119, B: 119, A: 255}, func(h *frame.Histogram, i int) float64 { return h.Density[i] }},
}

// WriteHTML renders h as a go-echarts line chart.
func WriteHTML(w io.Writer, h frame.Histogram, title string) error {
	x := make([]string, 256)
	for i := range x {
		x[i] = strconv.Itoa(i)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "samples per level"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "level", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "count"}),
	)
	line.SetXAxis(x)

	for _, s := range histogramSeries {
		data := make([]opts.LineData, 256)
		for i := range data {
			data[i] = opts.LineData{Value: s.value(&h, i)}
		}
		line.AddSeries(s.name, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: s.hex}))
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render histogram chart: %w", err)
	}
	return nil
}

func newPlot(h frame.Histogram, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "level"
	p.Y.Label.Text = "count"
	p.X.Min, p.X.Max = 0, 255

	for _, s := range histogramSeries {
		pts := make(plotter.XYs, 256)
		for i := range pts {
			pts[i] = plotter.XY{X: float64(i), Y: s.value(&h, i)}
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		l.Color = s.rgba
		l.Width = vg.Points(1)
		p.Add(l)
		p.Legend.Add(s.name, l)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	return p, nil
}

// WritePNG renders h as a gonum/plot line chart.
func WritePNG(w io.Writer, h frame.Histogram, title string) error {
	p, err := newPlot(h, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to render histogram plot: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// SaveFile picks the renderer from the extension of path: .html or .png.
func SaveFile(path string, h frame.Histogram, title string) error {
	var render func(io.Writer, frame.Histogram, string) error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".html", ".htm":
		render = WriteHTML
	case ".png":
		render = WritePNG
	default:
		return fmt.Errorf("unsupported report format %q", ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f, h, title); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
