// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/quick-apply/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// descriptionLines caps the job description preview
	descriptionLines = 4
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintListing outputs the listing about to be attempted.
func (p *Printer) PrintListing(job *types.JobListing) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:    %s\n", job.Title))
	sb.WriteString(fmt.Sprintf("Company:  %s\n", job.Company))
	if job.Location != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", job.Location))
	}
	sb.WriteString(fmt.Sprintf("Link:     %s\n", job.Link))
	if job.HiringContact != "" {
		sb.WriteString(fmt.Sprintf("Contact:  %s\n", job.HiringContact))
	}

	if desc := strings.TrimSpace(job.Description); desc != "" {
		sb.WriteString("\n")
		lines := strings.Split(desc, "\n")
		count := min(len(lines), descriptionLines)
		for _, line := range lines[:count] {
			sb.WriteString(line + "\n")
		}
		if len(lines) > descriptionLines {
			sb.WriteString(fmt.Sprintf("... and %d more lines\n", len(lines)-descriptionLines))
		}
	}

	p.printBox("LISTING", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAttempt outputs the outcome of a terminated attempt.
func (p *Printer) PrintAttempt(a *types.ApplicationAttempt) {
	if a == nil || !a.Terminated() {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Job:      %s\n", a.Job))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", a.Status))
	sb.WriteString(fmt.Sprintf("Pages:    %d\n", a.Page))
	if !a.FinishedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Took:     %s\n", a.FinishedAt.Sub(a.StartedAt).Round(time.Second)))
	}
	if a.Failure != nil {
		if a.Failure.Label != "" {
			sb.WriteString(fmt.Sprintf("Question: %s\n", a.Failure.Label))
		}
		sb.WriteString(fmt.Sprintf("Reason:   %s\n", a.Failure.Reason))
	}

	title := "APPLICATION SUBMITTED"
	if a.Status == types.OutcomeAborted {
		title = "APPLICATION ABORTED"
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRunStats outputs the totals of a run.
func (p *Printer) PrintRunStats(s types.RunStats) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Search queries:        %d\n", s.Queries))
	sb.WriteString(fmt.Sprintf("Result pages:          %d\n", s.ResultPages))
	sb.WriteString(fmt.Sprintf("Listings seen:         %d\n", s.Listings))
	sb.WriteString(fmt.Sprintf("Skipped (applied):     %d\n", s.SkippedApplied))
	sb.WriteString(fmt.Sprintf("Skipped (blacklist):   %d\n", s.SkippedBlacklisted))
	sb.WriteString(fmt.Sprintf("Skipped (no apply):    %d\n", s.SkippedNoQuickApply))
	sb.WriteString(fmt.Sprintf("Submitted:             %d\n", s.Submitted))
	sb.WriteString(fmt.Sprintf("Failed:                %d\n", s.Failed))
	sb.WriteString(fmt.Sprintf("Duration:              %s", s.Duration.Round(time.Second)))

	p.printBox("RUN SUMMARY", sb.String())
}

func truncate(line string, width int) string {
	runes := []rune(line)
	if len(runes) <= width {
		return line
	}
	return string(runes[:width-3]) + "..."
}
