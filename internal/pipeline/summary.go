package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderSummaryHTML writes a bar chart of processed, skipped and failed
// counts per stage.
func (s *Stats) RenderSummaryHTML(w io.Writer, subtitle string) error {
	stages := s.Stages()
	processed := make([]opts.BarData, len(stages))
	skipped := make([]opts.BarData, len(stages))
	failed := make([]opts.BarData, len(stages))
	for i, name := range stages {
		c := s.Get(name)
		processed[i] = opts.BarData{Value: c.Processed}
		skipped[i] = opts.BarData{Value: c.Skipped}
		failed[i] = opts.BarData{Value: c.Failed}
	}
	if subtitle == "" {
		subtitle = time.Now().Format(time.RFC3339)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "fusionprep run", Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Preprocessing summary", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	label := charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"})
	bar.SetXAxis(stages).
		AddSeries("processed", processed, label).
		AddSeries("skipped", skipped, label).
		AddSeries("failed", failed, label)

	page := components.NewPage()
	page.AddCharts(bar)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}
