package outcome

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/quick-apply/internal/types"
)

const separatorWidth = 120

// FileWriter appends human-readable records to successful-<ts>.txt and failed-<ts>.txt.
// Both files are created when the writer is opened, one pair per run.
type FileWriter struct {
	mu          sync.Mutex
	successPath string
	failedPath  string
	submitted   map[string]bool
}

var _ Recorder = (*FileWriter)(nil)

// NewFileWriter creates the run's log files in dir.
func NewFileWriter(dir string, now time.Time) (*FileWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	suffix := now.Format("-2006_01_02-15_04_05")
	w := &FileWriter{
		successPath: filepath.Join(dir, "successful"+suffix+".txt"),
		failedPath:  filepath.Join(dir, "failed"+suffix+".txt"),
		submitted:   map[string]bool{},
	}
	for _, p := range []string{w.successPath, w.failedPath} {
		f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file %s: %w", p, err)
		}
		f.Close()
	}
	return w, nil
}

// SuccessPath is the path of the successful applications log.
func (w *FileWriter) SuccessPath() string { return w.successPath }

// FailedPath is the path of the failed applications log.
func (w *FileWriter) FailedPath() string { return w.failedPath }

func (w *FileWriter) RecordSuccess(_ context.Context, a *types.ApplicationAttempt) error {
	entry := fmt.Sprintf("%s (%s)\n%s\nLink: %s\nCV: %s\n",
		a.Job.Title, a.Job.Company, a.Job.Location, a.Job.Link, a.ResumePath)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := appendEntry(w.successPath, entry); err != nil {
		return err
	}
	w.submitted[a.Job.Link] = true
	return nil
}

func (w *FileWriter) RecordFailure(_ context.Context, a *types.ApplicationAttempt) error {
	c := a.Context("", "unknown failure")
	if a.Failure != nil {
		c = *a.Failure
	}
	entry := FormatFailure(c)

	w.mu.Lock()
	defer w.mu.Unlock()
	return appendEntry(w.failedPath, entry)
}

// HasApplied only knows the links submitted through this writer.
func (w *FileWriter) HasApplied(_ context.Context, link string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitted[link], nil
}

// FormatFailure renders a failure context as a log entry.
func FormatFailure(c types.AttemptContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job title: %s\n", c.JobTitle)
	fmt.Fprintf(&b, "Company: %s\n", c.Company)
	fmt.Fprintf(&b, "Job link: %s\n", c.JobLink)
	if c.Page > 0 {
		fmt.Fprintf(&b, "Page: %d\n", c.Page)
	}
	if c.Label != "" {
		fmt.Fprintf(&b, "Question: %s\n", c.Label)
	}
	fmt.Fprintf(&b, "Reason: %s\n", c.Reason)
	return b.String()
}

func appendEntry(path, entry string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(entry + strings.Repeat("-", separatorWidth) + "\n"); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
