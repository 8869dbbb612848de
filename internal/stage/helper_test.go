package stage

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// argParser is a POSIX sh prelude that extracts -l and -o values into $in and $out.
const argParser = `in=""
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    -l) in="$2"; shift ;;
    -o) out="$2"; shift ;;
  esac
  shift
done
`

// writeTool writes an executable shell script named name into dir and returns its path.
func writeTool(t *testing.T, dir, name, body string) string {
	t.Helper()
	skipOnWindows(t)

	path := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + body
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil { //nolint:gosec // test executable
		t.Fatalf("failed to write fake tool: %v", err)
	}
	return path
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tools are POSIX shell scripts")
	}
}
