// Package export writes the cached analysis result to downloadable files.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/scdash/internal/model"
	"github.com/verte-zerg/scdash/internal/parse"
	"github.com/verte-zerg/scdash/internal/store"
)

// Kind selects an export format.
type Kind string

// Supported export kinds.
const (
	KindCSV    Kind = "csv"
	KindJSON   Kind = "json"
	KindReport Kind = "report"
	KindCharts Kind = "charts"
)

// ErrNoResult is returned when there is nothing to export yet.
var ErrNoResult = store.ErrNoResult

// Exporter reads the latest result from a store and formats it.
type Exporter struct {
	results store.ResultStore
	logger  *slog.Logger
	now     func() time.Time
}

// NewExporter returns an Exporter. now defaults to time.Now.
func NewExporter(results store.ResultStore, logger *slog.Logger, now func() time.Time) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Exporter{results: results, logger: logger, now: now}
}

// Document is the JSON export envelope.
type Document struct {
	AnalysisDate string             `json:"analysisDate"`
	Settings     model.Settings     `json:"settings"`
	Data         []model.ReplayData `json:"data"`
}

// isoMillis matches the ISO-8601 form with millisecond precision.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Export writes kind to w.
func (e *Exporter) Export(ctx context.Context, kind Kind, w io.Writer) error {
	switch kind {
	case KindCSV:
		return e.CSV(ctx, w)
	case KindJSON:
		return e.JSON(ctx, w)
	case KindReport:
		return e.Report(ctx, w)
	case KindCharts:
		return e.Charts(ctx, w)
	default:
		return fmt.Errorf("unsupported export format: %s", kind)
	}
}

// CSV writes the cached raw output unchanged.
func (e *Exporter) CSV(ctx context.Context, w io.Writer) error {
	out, err := store.LatestOutput(ctx, e.results)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// JSON writes the cached settings and parsed rows as indented JSON.
func (e *Exporter) JSON(ctx context.Context, w io.Writer) error {
	latest, err := store.LoadLatest(ctx, e.results)
	if err != nil {
		return err
	}
	doc := Document{
		AnalysisDate: e.now().UTC().Format(isoMillis),
		Settings:     latest.Settings,
		Data:         parse.CSV(latest.Output),
	}
	if doc.Settings.SelectedAnalyzers == nil {
		doc.Settings.SelectedAnalyzers = []string{}
	}
	if doc.Settings.Filters == nil {
		doc.Settings.Filters = []model.FilterConfig{}
	}
	output, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if _, err := w.Write(output); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// FileName returns the download name for kind on the given day.
func FileName(kind Kind, now time.Time) string {
	day := now.UTC().Format("2006-01-02")
	switch kind {
	case KindReport:
		return "sctool-report-" + day + ".html"
	case KindCharts:
		return "sctool-charts-" + day + ".html"
	default:
		return "sctool-analysis-" + day + "." + string(kind)
	}
}

// Options controls WriteFile.
type Options struct {
	Dir       string
	Overwrite bool
}

// WriteFile renders kind into dir under its dated file name. Nothing is
// created when rendering fails.
func (e *Exporter) WriteFile(ctx context.Context, kind Kind, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := e.Export(ctx, kind, &buf); err != nil {
		return "", err
	}
	path := filepath.Join(opts.Dir, FileName(kind, e.now()))
	if err := writeFile(path, buf.Bytes(), opts.Overwrite); err != nil {
		return "", err
	}
	e.logger.Info("export completed", "kind", kind, "path", path)
	return path, nil
}

func writeFile(path string, data []byte, overwrite bool) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("file already exists: %s (use --force to replace)", path)
		}
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	return nil
}
