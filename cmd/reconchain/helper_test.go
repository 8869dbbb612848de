package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

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

const (
	fakeSubfinder = argParser + `printf 'a.example.com\nb.example.com\n' > "$out"
`
	fakeHTTPX = argParser + `echo 'https://a.example.com' > "$out"
`
	fakeHTTPXNoHosts = argParser + `: > "$out"
`
	fakeNuclei = argParser + `cat <<'JSONL' > "$out"
{"info":{"severity":"critical","name":"Exposed Panel"},"host":"https://a.example.com"}
JSONL
echo '[INF] Templates loaded' >&2
cat "$out"
`
	fakeFailing = `echo 'boom' >&2
exit 1
`
)

// fakeTools holds the tool scripts written for one test.
type fakeTools struct {
	subfinder string
	httpx     string
	nuclei    string
}

// writeTool writes an executable shell script named name into dir and returns its path.
func writeTool(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tools are POSIX shell scripts")
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil { //nolint:gosec // test executable
		t.Fatalf("failed to write fake tool: %v", err)
	}
	return path
}

// writeConfig writes a configuration file pointing at tools and returns its path.
func writeConfig(t *testing.T, dir string, tools fakeTools) string {
	t.Helper()

	content := "tools:\n" +
		"  subfinder: " + tools.subfinder + "\n" +
		"  httpx: " + tools.httpx + "\n" +
		"  nuclei: " + tools.nuclei + "\n"
	path := filepath.Join(dir, "reconchain.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// execute runs the CLI and returns the exit code and captured output.
func execute(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}
