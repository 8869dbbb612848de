package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/reconchain/internal/model"
)

func TestRecorderWriteToTextfile(t *testing.T) {
	t.Parallel()

	rec, err := NewRecorder()
	if err != nil {
		t.Fatalf("NewRecorder() error = %v", err)
	}

	rec.ObserveStage("example.com", model.Succeeded(model.StageDiscovery, 2), 3*time.Second)
	rec.ObserveStage("example.com", model.Failed(model.StageFiltering, model.ErrTimeout), 300*time.Second)

	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec.ObserveSummary(model.Summary{
		Target:          "example.com",
		StartedAt:       started,
		FinishedAt:      started.Add(90 * time.Second),
		Vulnerabilities: model.Aggregate{Critical: 1, Low: 1, Total: 2},
		Outcome:         model.OutcomeCompleted,
	})

	path := filepath.Join(t.TempDir(), "reconchain.prom")
	if err := rec.WriteToTextfile(path); err != nil {
		t.Fatalf("WriteToTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path) //nolint:gosec // test file
	if err != nil {
		t.Fatalf("failed to read metrics file: %v", err)
	}
	text := string(data)

	want := []string{
		`reconchain_stage_items{stage="discovery",target="example.com"} 2`,
		`reconchain_stage_success{stage="discovery",target="example.com"} 1`,
		`reconchain_stage_success{stage="filtering",target="example.com"} 0`,
		`reconchain_stage_duration_seconds{stage="filtering",target="example.com"} 300`,
		`reconchain_findings{severity="critical",target="example.com"} 1`,
		`reconchain_findings{severity="low",target="example.com"} 1`,
		`reconchain_findings{severity="high",target="example.com"} 0`,
		`reconchain_runs_total{outcome="completed",target="example.com"} 1`,
		`reconchain_last_run_duration_seconds{target="example.com"} 90`,
	}
	for _, line := range want {
		if !strings.Contains(text, line) {
			t.Errorf("metrics file missing %q\n%s", line, text)
		}
	}
}

func TestRecorderSkipsTimesForUnfinishedRun(t *testing.T) {
	t.Parallel()

	rec, err := NewRecorder()
	if err != nil {
		t.Fatalf("NewRecorder() error = %v", err)
	}
	rec.ObserveSummary(model.Summary{Target: "example.com", Outcome: model.OutcomeInterrupted})

	path := filepath.Join(t.TempDir(), "reconchain.prom")
	if err := rec.WriteToTextfile(path); err != nil {
		t.Fatalf("WriteToTextfile() error = %v", err)
	}
	data, err := os.ReadFile(path) //nolint:gosec // test file
	if err != nil {
		t.Fatalf("failed to read metrics file: %v", err)
	}
	if strings.Contains(string(data), "reconchain_last_run_timestamp_seconds{") {
		t.Error("expected no last-run timestamp for an unfinished run")
	}
	if !strings.Contains(string(data), `reconchain_runs_total{outcome="interrupted",target="example.com"} 1`) {
		t.Errorf("expected interrupted run counter\n%s", data)
	}
}

func TestWriteToTextfileBadPath(t *testing.T) {
	t.Parallel()

	rec, err := NewRecorder()
	if err != nil {
		t.Fatalf("NewRecorder() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "missing", "dir", "reconchain.prom")
	if err := rec.WriteToTextfile(path); err == nil {
		t.Error("expected error for a path in a missing directory")
	}
}
