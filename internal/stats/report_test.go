package stats

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/lyrictype/internal/model"
	"github.com/verte-zerg/lyrictype/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "lyrictype.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		m := Score(100, i, 30000)
		err := st.InsertResult(ctx, model.TestResult{
			SessionID:       fmt.Sprintf("session-%d", i),
			StartedAt:       start,
			EndedAt:         start.Add(30 * time.Second),
			ArtistID:        "1",
			Artist:          "ABBA",
			Title:           fmt.Sprintf("song %d", i),
			CharactersTyped: 100,
			Incorrect:       i,
			RawWPM:          m.RawWPM,
			WPM:             m.WPM,
			Accuracy:        m.Accuracy,
			ActiveMs:        30000,
		})
		if err != nil {
			t.Fatalf("insert result: %v", err)
		}
	}

	cfg := model.StatsConfig{
		ArtistID:    "1",
		Last:        2,
		CurveWindow: 1,
	}
	report, err := BuildReport(ctx, st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(report.Results))
	}
	if report.Results[0].SessionID != "session-1" || report.Results[1].SessionID != "session-2" {
		t.Fatalf("unexpected session ids: %+v", report.Results)
	}
	if len(report.Window) != 1 || report.Window[0].SessionID != "session-2" {
		t.Fatalf("unexpected window: %+v", report.Window)
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, 40); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, needle := range []string{"Tests: 2", "Learning Curves", "Per-Artist", "ABBA"} {
		if !strings.Contains(out, needle) {
			t.Fatalf("report missing %q:\n%s", needle, out)
		}
	}
}

func TestReportRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := (Report{}).Render(&buf, 80); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No tests found." {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
