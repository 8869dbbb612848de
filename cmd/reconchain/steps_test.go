package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/reconchain/internal/console"
	"github.com/nao1215/reconchain/internal/model"
	"github.com/nao1215/reconchain/internal/stage"
	"github.com/nao1215/reconchain/internal/workspace"
)

func TestCommandLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cmd  stage.Command
		want string
	}{
		{
			name: "plain",
			cmd:  stage.Command{Name: "subfinder", Path: "/usr/bin/subfinder", Args: []string{"-d", "example.com"}},
			want: "subfinder -d example.com",
		},
		{
			name: "proxy credentials masked",
			cmd:  stage.Command{Name: "httpx", Args: []string{"-proxy", "socks5://bob:pw@127.0.0.1:1080"}},
			want: "httpx -proxy socks5://***REDACTED***@127.0.0.1:1080",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := commandLine(tt.cmd); got != tt.want {
				t.Errorf("commandLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReportDiscovery(t *testing.T) {
	t.Parallel()

	newRun := func(t *testing.T, lines ...string) *model.Run {
		t.Helper()
		paths, identity, err := workspace.Initialize("example.com", t.TempDir(), time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC))
		if err != nil {
			t.Fatal(err)
		}
		if err := workspace.WriteLines(paths.Subdomains, lines...); err != nil {
			t.Fatal(err)
		}
		return model.NewRun("id", identity, paths, "critical")
	}

	t.Run("fallback to the target", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		run := newRun(t, "example.com")
		reportDiscovery(console.New(&buf, console.WithColor(false)), run,
			model.StageResult{Stage: model.StageDiscovery, Success: true, Count: 1, Fallback: true})

		if !strings.Contains(buf.String(), "No subdomains found, using main domain") {
			t.Errorf("expected fallback notice:\n%s", buf.String())
		}
	})

	t.Run("apex returned by the tool is not a fallback", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		run := newRun(t, "example.com")
		reportDiscovery(console.New(&buf, console.WithColor(false)), run,
			model.StageResult{Stage: model.StageDiscovery, Success: true, Count: 1})

		if strings.Contains(buf.String(), "using main domain") {
			t.Errorf("unexpected fallback notice:\n%s", buf.String())
		}
		if !strings.Contains(buf.String(), "Found: 1 subdomain(s)") {
			t.Errorf("expected count line:\n%s", buf.String())
		}
	})

	t.Run("samples subdomains", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		run := newRun(t, "a.example.com", "b.example.com")
		reportDiscovery(console.New(&buf, console.WithColor(false)), run,
			model.StageResult{Stage: model.StageDiscovery, Success: true, Count: 2})

		out := buf.String()
		if strings.Contains(out, "using main domain") {
			t.Errorf("unexpected fallback notice:\n%s", out)
		}
		if !strings.Contains(out, "a.example.com") || !strings.Contains(out, filepath.Base(run.Paths.Subdomains)) {
			t.Errorf("expected sample and path:\n%s", out)
		}
	})
}

func TestAnnouncedStep(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	out := console.New(&buf, console.WithColor(false))

	var order []string
	step := &announcedStep{
		Step:  stubStep{result: model.StageResult{Stage: model.StageFiltering, Success: true, Count: 3}, order: &order},
		stage: model.StageFiltering,
		title: "Filter",
		out:   out,
		intro: func(*model.Run) { order = append(order, "intro") },
		report: func(_ context.Context, _ *model.Run, result model.StageResult) {
			order = append(order, "report")
			if result.Count != 3 {
				t.Errorf("report got count %d, want 3", result.Count)
			}
		},
	}

	if _, err := step.Do(context.Background(), &model.Run{}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got := strings.Join(order, ","); got != "intro,do,report" {
		t.Errorf("call order = %s, want intro,do,report", got)
	}
	if !strings.Contains(buf.String(), "[STEP 2] Filter") {
		t.Errorf("expected stage header:\n%s", buf.String())
	}
}

type stubStep struct {
	result model.StageResult
	order  *[]string
}

func (s stubStep) Name() string { return "stub" }

func (s stubStep) Do(context.Context, *model.Run) (model.StageResult, error) {
	*s.order = append(*s.order, "do")
	return s.result, nil
}
