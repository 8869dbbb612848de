package report

import (
	"io"

	"github.com/nao1215/reconchain/internal/model"
)

// Writer renders a run summary to its destination.
type Writer interface {
	// Write outputs the summary and returns the number of bytes written.
	Write(summary model.Summary) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
