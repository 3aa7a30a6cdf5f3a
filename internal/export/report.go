package export

import (
	"context"
	"fmt"
	"html/template"
	"io"

	"github.com/verte-zerg/scdash/internal/model"
	"github.com/verte-zerg/scdash/internal/parse"
	"github.com/verte-zerg/scdash/internal/stats"
	"github.com/verte-zerg/scdash/internal/store"
)

// reportRows is the number of games listed in the report table.
const reportRows = 10

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <title>StarCraft Replay Analysis Report</title>
    <style>
      body { font-family: Arial, sans-serif; margin: 40px; }
      .header { color: #1976d2; border-bottom: 2px solid #1976d2; padding-bottom: 10px; }
      .summary { background: #f5f5f5; padding: 20px; margin: 20px 0; border-radius: 8px; }
      .stats { display: flex; justify-content: space-around; margin: 20px 0; }
      .stat { text-align: center; }
      table { width: 100%; border-collapse: collapse; margin: 20px 0; }
      th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
      th { background-color: #f2f2f2; }
    </style>
  </head>
  <body>
    <div class="header">
      <h1>&#127918; StarCraft Replay Analysis Report</h1>
      <p>Generated on: {{.GeneratedOn}}</p>
    </div>

    <div class="summary">
      <h2>Analysis Summary</h2>
      <div class="stats">
        <div class="stat">
          <h3>Total Games</h3>
          <p>{{.Summary.Games}}</p>
        </div>
        <div class="stat">
          <h3>Average Duration</h3>
          <p>{{.Summary.AvgDuration}} minutes</p>
        </div>
        <div class="stat">
          <h3>Unique Maps</h3>
          <p>{{.Summary.UniqueMaps}}</p>
        </div>
      </div>
    </div>

    <h2>Recent Games</h2>
    <table>
      <thead>
        <tr>
          <th>Date</th>
          <th>Duration</th>
          <th>Map</th>
          <th>Matchup</th>
          {{- if .WithPlayer}}
          <th>Your APM</th>
          <th>Result</th>
          {{- end}}
        </tr>
      </thead>
      <tbody>
        {{- range .Games}}
        <tr>
          <td>{{.Date}}</td>
          <td>{{.Duration}}m</td>
          <td>{{.MapName}}</td>
          <td>{{.Matchup}}</td>
          {{- if $.WithPlayer}}
          <td>{{.APM}}</td>
          <td>{{.Result}}</td>
          {{- end}}
        </tr>
        {{- end}}
      </tbody>
    </table>

    <p><em>Report generated by scdash</em></p>
  </body>
</html>
`))

type reportGame struct {
	model.ReplayData
	APM    string
	Result string
}

type reportData struct {
	GeneratedOn string
	Summary     stats.Summary
	WithPlayer  bool
	Games       []reportGame
}

// Report writes a self-contained HTML report of the cached result.
func (e *Exporter) Report(ctx context.Context, w io.Writer) error {
	latest, err := store.LoadLatest(ctx, e.results)
	if err != nil {
		return err
	}
	rows := parse.CSV(latest.Output)
	data := reportData{
		GeneratedOn: e.now().Format("1/2/2006, 3:04:05 PM"),
		Summary:     stats.Summarize(rows),
		WithPlayer:  latest.Settings.PlayerName != "",
	}
	if len(rows) > reportRows {
		rows = rows[:reportRows]
	}
	for _, r := range rows {
		data.Games = append(data.Games, reportGame{
			ReplayData: r,
			APM:        stats.APMLabel(r),
			Result:     stats.ResultLabel(r),
		})
	}
	if err := reportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}
