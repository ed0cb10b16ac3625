package outwriter

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/leoyyy3/mericoComment/internal/contract"
	"github.com/leoyyy3/mericoComment/schema"
)

const chartHeight = "500px"

// histogramBarChart builds a bar chart over ranked histogram entries.
// label maps keys to display form; nil keeps them raw.
func histogramBarChart(title string, hist map[string]int, limit int, label func(string) string) *charts.Bar {
	entries := schema.RankEntries(hist, limit)
	labels := make([]string, len(entries))
	data := make([]opts.BarData, len(entries))
	for i, e := range entries {
		labels[i] = e.Key
		if label != nil {
			labels[i] = label(e.Key)
		}
		data[i] = opts.BarData{Value: e.Count}
	}

	chart := charts.NewBar()
	chart.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: chartHeight}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)
	chart.SetXAxis(labels)
	chart.AddSeries("Count", data)
	return chart
}

// histogramPieChart builds a pie chart over histogram entries.
func histogramPieChart(title string, hist map[string]int) *charts.Pie {
	entries := schema.RankEntries(hist, 0)
	data := make([]opts.PieData, len(entries))
	for i, e := range entries {
		data[i] = opts.PieData{Name: e.Key, Value: e.Count}
	}

	chart := charts.NewPie()
	chart.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{Height: chartHeight}),
	)
	chart.AddSeries(title, data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}"}),
		)
	return chart
}

// topGroupsBarChart charts the largest duplicate groups by size.
func topGroupsBarChart(groups []schema.DuplicateGroup) *charts.Bar {
	labels := make([]string, len(groups))
	data := make([]opts.BarData, len(groups))
	for i, g := range groups {
		labels[i] = contract.Truncate(g.GroupName, 40)
		data[i] = opts.BarData{Value: g.NumFunctions}
	}

	chart := charts.NewBar()
	chart.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Largest Duplicate Groups"}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: chartHeight}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)
	chart.SetXAxis(labels)
	chart.AddSeries("Functions", data)
	return chart
}

// writeAggregateHTML renders the flagged-function report as a static
// HTML page of precomputed charts.
func writeAggregateHTML(w io.Writer, report *schema.AggregateReport, cfg *contract.Config) error {
	page := components.NewPage()
	page.PageTitle = "Uncommented Function Analysis"
	page.AddCharts(
		histogramPieChart("By Severity", report.BySeverity),
		histogramBarChart("Top Types", report.ByType, 15, nil),
		histogramBarChart("Top Rules", report.ByRule, cfg.TopN, nil),
		histogramBarChart("Top Projects", report.ProjectCounts(), cfg.TopN, report.ProjectLabel),
	)
	return page.Render(w)
}

// writeDuplicateHTML renders the duplicate-group report as a static
// HTML page.
func writeDuplicateHTML(w io.Writer, report *schema.DuplicateReport, cfg *contract.Config) error {
	page := components.NewPage()
	page.PageTitle = "Duplicate Function Analysis"
	page.AddCharts(
		histogramPieChart("By Language", report.ByLanguage),
		histogramPieChart("By Complexity", report.ByComplexity),
		topGroupsBarChart(report.TopGroups),
	)
	return page.Render(w)
}
