package export

import (
	"context"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/verte-zerg/scdash/internal/model"
	"github.com/verte-zerg/scdash/internal/parse"
	"github.com/verte-zerg/scdash/internal/stats"
	"github.com/verte-zerg/scdash/internal/store"
)

const (
	chartWidth      = "900px"
	chartHeight     = "420px"
	durationWindow  = 5
	chartPageTitle  = "StarCraft Replay Charts"
	seriesGames     = "Games"
	seriesDuration  = "Duration (minutes)"
	seriesMovingAvg = "Moving average"
)

// Charts writes an HTML page with interactive charts of the cached result.
func (e *Exporter) Charts(ctx context.Context, w io.Writer) error {
	latest, err := store.LoadLatest(ctx, e.results)
	if err != nil {
		return err
	}
	rows := parse.CSV(latest.Output)

	page := components.NewPage()
	page.PageTitle = chartPageTitle
	page.AddCharts(
		countBar("Games per Map", stats.MapCounts(rows)),
		countBar("Games per Matchup", stats.MatchupCounts(rows)),
		countBar("Games per Day", stats.GamesPerDate(rows)),
		durationLine(rows),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}
	return nil
}

func countBar(title string, counts []stats.Count) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)
	labels := make([]string, len(counts))
	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		labels[i] = c.Label
		data[i] = opts.BarData{Value: c.Games}
	}
	bar.SetXAxis(labels).AddSeries(seriesGames, data)
	return bar
}

func durationLine(rows []model.ReplayData) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Game Duration", Subtitle: "Minutes per game in output order"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	durations := stats.Durations(rows)
	smoothed := stats.MovingAverage(durations, durationWindow)
	labels := make([]string, len(rows))
	raw := make([]opts.LineData, len(rows))
	avg := make([]opts.LineData, len(rows))
	for i := range rows {
		labels[i] = fmt.Sprintf("#%d", i+1)
		raw[i] = opts.LineData{Value: durations[i]}
		avg[i] = opts.LineData{Value: stats.RoundHalfUp(smoothed[i])}
	}
	line.SetXAxis(labels).
		AddSeries(seriesDuration, raw).
		AddSeries(seriesMovingAvg, avg).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}
