package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/reconchain/internal/model"
	"github.com/nao1215/reconchain/internal/workspace"
)

// filePerm is the permission of summary files.
const filePerm = 0600

// WriteFile renders summary with the writer built by newWriter into path,
// replacing any existing file.
func WriteFile(path string, summary model.Summary, newWriter func(io.Writer) Writer) (err error) {
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close %s: %w", path, closeErr))
		}
	}()

	if _, err := newWriter(f).Write(summary); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriteSummaryFile writes summary.txt to summary.Paths.Summary.
func WriteSummaryFile(summary model.Summary) error {
	return WriteFile(summary.Paths.Summary, summary, func(w io.Writer) Writer {
		return NewSimpleWriter(w)
	})
}

// Companions selects the optional summary formats.
type Companions struct {
	Markdown bool
	JSON     bool
	Version  string
}

// WriteCompanions writes summary.md and summary.json next to summary.txt as
// selected, and returns the paths written.
func WriteCompanions(summary model.Summary, c Companions) ([]string, error) {
	var written []string

	if c.Markdown {
		path := workspace.Sibling(&summary.Paths, model.SummaryMarkdownFile)
		if err := WriteFile(path, summary, func(w io.Writer) Writer {
			return NewMarkdownWriter(w)
		}); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if c.JSON {
		path := workspace.Sibling(&summary.Paths, model.SummaryJSONFile)
		if err := WriteFile(path, summary, func(w io.Writer) Writer {
			return NewJSONWriter(w, WithPrettyPrint(), WithVersion(c.Version))
		}); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	return written, nil
}
