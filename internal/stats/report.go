// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/lyrictype/internal/model"
	"github.com/verte-zerg/lyrictype/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Results []model.TestResult
	Window  []model.TestResult
	window  int
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	results, err := st.ListResults(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(results) > cfg.Last {
		results = results[len(results)-cfg.Last:]
	}
	return Report{
		Results: results,
		Window:  lastResults(results, cfg.CurveWindow),
		window:  cfg.CurveWindow,
	}, nil
}

// Render writes the summary, curves sized to width, and per-artist table.
func (r Report) Render(w io.Writer, width int) error {
	if err := RenderSummary(w, r.Results); err != nil {
		return err
	}
	if len(r.Results) == 0 {
		return nil
	}
	if err := RenderCurves(w, r.Results, r.window, curveWidth(width)); err != nil {
		return err
	}
	return RenderArtistTable(w, r.Window)
}

// curveWidth leaves room for the "Accuracy " label.
func curveWidth(termWidth int) int {
	if termWidth <= 0 {
		return 0
	}
	return max(1, termWidth-len("Accuracy "))
}

func lastResults(results []model.TestResult, window int) []model.TestResult {
	if window <= 0 || len(results) <= window {
		return results
	}
	return results[len(results)-window:]
}
