package classifier

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/reconchain/internal/model"
)

// Notifier receives live feedback while the scanner runs.
// Calls happen on the reading goroutine, one line at a time.
type Notifier interface {
	// Finding is called once per decoded finding, after it has been counted.
	Finding(f model.Finding)

	// Progress is called for non-finding lines that look like scanner progress.
	Progress(line string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

// Finding implements Notifier.
func (NopNotifier) Finding(model.Finding) {}

// Progress implements Notifier.
func (NopNotifier) Progress(string) {}

// Fold classifies one line and adds the result to agg.
// It returns the updated aggregate and, when the line was a record, the finding.
func Fold(agg model.Aggregate, line string) (model.Aggregate, model.Finding, bool) {
	f, ok := Classify(line)
	if !ok {
		return agg, model.Finding{}, false
	}
	agg.Add(f)
	return agg, f, true
}

// Stream reads r line by line as data arrives and returns the aggregate of
// every finding seen. Lines are handled before the next read, so notify sees
// findings while the producer is still running.
//
// Stream returns when r reaches EOF. If ctx is cancelled it stops after the
// current line and returns ctx.Err() together with the counts so far; the
// caller decides whether to keep them.
func Stream(ctx context.Context, r io.Reader, notify Notifier) (model.Aggregate, error) {
	if notify == nil {
		notify = NopNotifier{}
	}

	var agg model.Aggregate
	reader := bufio.NewReader(r)

	for {
		if err := ctx.Err(); err != nil {
			return agg, err
		}

		line, readErr := reader.ReadString('\n')
		line = strings.TrimSpace(line)

		if line != "" {
			var f model.Finding
			var ok bool
			agg, f, ok = Fold(agg, line)
			if ok {
				notify.Finding(f)
			} else if IsProgress(line) {
				notify.Progress(line)
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return agg, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return agg, ctxErr
			}
			return agg, fmt.Errorf("failed to read scanner output: %w", readErr)
		}
	}
}
