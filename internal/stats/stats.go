// Package stats contains scoring and history reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/lyrictype/internal/model"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 || len(values) == 0 {
		copy(out, values)
		return out
	}
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary of finished tests.
func RenderSummary(w io.Writer, results []model.TestResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No tests found.")
		return err
	}
	var totalWPM, totalAcc float64
	var totalChars int
	best := results[0]
	for _, r := range results {
		totalWPM += r.WPM
		totalAcc += r.Accuracy
		totalChars += r.CharactersTyped
		if r.WPM > best.WPM {
			best = r
		}
	}
	count := float64(len(results))
	lines := []string{
		"Summary",
		fmt.Sprintf("Tests: %d", len(results)),
		fmt.Sprintf("Characters typed: %d", totalChars),
		fmt.Sprintf("Avg WPM: %.2f", totalWPM/count),
		fmt.Sprintf("Best WPM: %.2f (%s - %s)", best.WPM, best.Artist, best.Title),
		fmt.Sprintf("Avg Accuracy: %.2f%%", totalAcc/count),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints WPM and accuracy sparklines, keeping the most recent
// width results when width is positive.
func RenderCurves(w io.Writer, results []model.TestResult, window, width int) error {
	if len(results) == 0 {
		return nil
	}
	if width > 0 && len(results) > width {
		results = results[len(results)-width:]
	}
	wpms := make([]float64, len(results))
	accs := make([]float64, len(results))
	for i, r := range results {
		wpms[i] = r.WPM
		accs[i] = r.Accuracy
	}
	wpms = MovingAverage(wpms, window)
	accs = MovingAverage(accs, window)
	lines := []string{
		"Learning Curves",
		fmt.Sprintf("WPM      %s", Sparkline(wpms)),
		fmt.Sprintf("Accuracy %s", Sparkline(accs)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// ArtistSummary aggregates results for one artist.
type ArtistSummary struct {
	Artist   string
	Tests    int
	WPM      float64
	Accuracy float64
}

// SummarizeArtists averages results per artist, fastest first.
func SummarizeArtists(results []model.TestResult) []ArtistSummary {
	byArtist := map[string]*ArtistSummary{}
	for _, r := range results {
		entry, ok := byArtist[r.Artist]
		if !ok {
			entry = &ArtistSummary{Artist: r.Artist}
			byArtist[r.Artist] = entry
		}
		entry.Tests++
		entry.WPM += r.WPM
		entry.Accuracy += r.Accuracy
	}
	rows := make([]ArtistSummary, 0, len(byArtist))
	for _, entry := range byArtist {
		entry.WPM /= float64(entry.Tests)
		entry.Accuracy /= float64(entry.Tests)
		rows = append(rows, *entry)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].WPM == rows[j].WPM {
			return rows[i].Artist < rows[j].Artist
		}
		return rows[i].WPM > rows[j].WPM
	})
	return rows
}

// RenderArtistTable prints per-artist aggregates, fastest first.
func RenderArtistTable(w io.Writer, results []model.TestResult) error {
	if len(results) == 0 {
		return nil
	}
	rows := SummarizeArtists(results)

	if _, err := fmt.Fprintln(w, "Per-Artist"); err != nil {
		return err
	}
	headers := []string{"Artist", "Tests", "Avg WPM", "Accuracy"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.Artist,
			fmt.Sprintf("%d", r.Tests),
			fmt.Sprintf("%.1f", r.WPM),
			fmt.Sprintf("%.2f%%", r.Accuracy),
		})
	}
	for _, line := range formatTable(headers, tableRows, map[int]bool{1: true, 2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
