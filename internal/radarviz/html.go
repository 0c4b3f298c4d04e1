package radarviz

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ScatterHTML renders an interactive scatter of the detections. When rcs is
// non-nil it is carried as the third value of each point and drives the
// colour scale.
func ScatterHTML(w io.Writer, xs, ys, rcs []float64, o Options) error {
	if err := checkPoints(xs, ys); err != nil {
		return err
	}
	if rcs != nil && len(rcs) != len(xs) {
		return fmt.Errorf("rcs length %d does not match %d points", len(rcs), len(xs))
	}

	data := make([]opts.ScatterData, len(xs))
	maxAbs := 0.0
	rcsMin, rcsMax := math.Inf(1), math.Inf(-1)
	for i := range xs {
		maxAbs = math.Max(maxAbs, math.Max(math.Abs(xs[i]), math.Abs(ys[i])))
		if rcs == nil {
			data[i] = opts.ScatterData{Value: []interface{}{xs[i], ys[i]}}
			continue
		}
		data[i] = opts.ScatterData{Value: []interface{}{xs[i], ys[i], rcs[i]}}
		rcsMin = math.Min(rcsMin, rcs[i])
		rcsMax = math.Max(rcsMax, rcs[i])
	}
	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1
	}

	px := fmt.Sprintf("%dpx", o.size())
	global := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{PageTitle: o.title("Radar Scatter"), Width: px, Height: px}),
		charts.WithTitleOpts(opts.Title{Title: o.title("Radar Scatter"), Subtitle: fmt.Sprintf("points=%d", len(xs))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	}
	if rcs != nil {
		if rcsMax <= rcsMin {
			rcsMax = rcsMin + 1
		}
		global = append(global, charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(rcsMin),
			Max:        float32(rcsMax),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#313695", "#74add1", "#fee090", "#f46d43", "#a50026"}},
		}))
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(global...)
	scatter.AddSeries("detections", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
