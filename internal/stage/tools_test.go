package stage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestCheckTools tests tool resolution with explicit paths.
func TestCheckTools(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	subfinder := writeTool(t, dir, "subfinder", "exit 0\n")

	t.Run("all tools found", func(t *testing.T) {
		t.Parallel()

		tools := []Tool{{Name: "subfinder", Path: subfinder}}
		statuses, err := CheckTools(tools)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(statuses) != 1 || !statuses[0].Found() {
			t.Fatalf("expected one found status, got %+v", statuses)
		}
		if got := Paths(statuses)["subfinder"]; got != subfinder {
			t.Errorf("expected path %s, got %s", subfinder, got)
		}
	})

	t.Run("every missing tool is listed", func(t *testing.T) {
		t.Parallel()

		tools := []Tool{
			{Name: "subfinder", Path: subfinder},
			{Name: "httpx", Path: filepath.Join(dir, "no-httpx")},
			{Name: "nuclei", Path: filepath.Join(dir, "no-nuclei")},
		}
		statuses, err := CheckTools(tools)

		var missing *MissingToolsError
		if !errors.As(err, &missing) {
			t.Fatalf("expected *MissingToolsError, got %v", err)
		}
		if diff := cmp.Diff([]string{"httpx", "nuclei"}, missing.Names); diff != "" {
			t.Errorf("missing names mismatch (-want +got):\n%s", diff)
		}
		if !errors.Is(err, ErrToolNotFound) {
			t.Error("expected error to match ErrToolNotFound")
		}
		if len(statuses) != 3 {
			t.Errorf("expected 3 statuses, got %d", len(statuses))
		}
		if len(Paths(statuses)) != 1 {
			t.Errorf("expected 1 resolved path, got %v", Paths(statuses))
		}
	})

	t.Run("directory is not an executable", func(t *testing.T) {
		t.Parallel()

		_, err := Tool{Name: "nuclei", Path: dir}.Resolve()
		if !errors.Is(err, ErrToolNotFound) {
			t.Errorf("expected ErrToolNotFound, got %v", err)
		}
	})
}

// TestDefaultTools tests the tool order.
func TestDefaultTools(t *testing.T) {
	t.Parallel()

	var names []string
	for _, tool := range DefaultTools() {
		names = append(names, tool.Name)
		if tool.InstallHint == "" {
			t.Errorf("tool %s has no install hint", tool.Name)
		}
	}
	if diff := cmp.Diff([]string{ToolSubfinder, ToolHTTPX, ToolNuclei}, names); diff != "" {
		t.Errorf("tool order mismatch (-want +got):\n%s", diff)
	}
}
