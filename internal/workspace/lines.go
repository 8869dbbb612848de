package workspace

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// maxLineSize bounds a single artifact line. Tool output lines (URLs, JSON
// records with extracted data) can exceed bufio's 64KiB default.
const maxLineSize = 1024 * 1024

// filePerm is the permission for files written by reconchain.
const filePerm = 0600

// ReadLines returns the non-blank lines of path with surrounding whitespace trimmed.
// A missing file yields no lines and no error.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from RunPaths
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}

// CountLines returns the number of non-blank lines in path.
// A missing file counts as zero.
func CountLines(path string) (int, error) {
	lines, err := ReadLines(path)
	if err != nil {
		return 0, err
	}
	return len(lines), nil
}

// WriteLines replaces path with lines, one per line.
func WriteLines(path string, lines ...string) error {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(sb.String()), filePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
