package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OutcomeStatus is the terminal status of an application attempt.
type OutcomeStatus string

const (
	// OutcomePending means the attempt has not terminated yet.
	OutcomePending   OutcomeStatus = ""
	OutcomeSubmitted OutcomeStatus = "submitted"
	OutcomeAborted   OutcomeStatus = "aborted"
)

// AttemptContext is the structured context attached to every attempt-level failure.
type AttemptContext struct {
	JobTitle string `json:"job_title"`
	JobLink  string `json:"job_link"`
	Company  string `json:"company"`
	Page     int    `json:"page"`
	Label    string `json:"label,omitempty"`
	Reason   string `json:"reason"`
}

func (c AttemptContext) String() string {
	s := fmt.Sprintf("%s (%s) page %d", c.JobTitle, c.Company, c.Page)
	if c.Label != "" {
		s += fmt.Sprintf(" field %q", c.Label)
	}
	if c.Reason != "" {
		s += ": " + c.Reason
	}
	return s
}

// ApplicationAttempt is the ephemeral state of one job application.
// It is owned by the orchestrator for the duration of one job and never shared.
type ApplicationAttempt struct {
	ID         uuid.UUID
	Job        JobListing
	Page       int
	Status     OutcomeStatus
	Failure    *AttemptContext
	ResumePath string
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewApplicationAttempt starts an attempt for the given listing.
func NewApplicationAttempt(job JobListing) *ApplicationAttempt {
	return &ApplicationAttempt{
		ID:        uuid.New(),
		Job:       job,
		StartedAt: time.Now(),
	}
}

// Context returns the attempt context for the current page with the given label and reason.
func (a *ApplicationAttempt) Context(label, reason string) AttemptContext {
	return AttemptContext{
		JobTitle: a.Job.Title,
		JobLink:  a.Job.Link,
		Company:  a.Job.Company,
		Page:     a.Page,
		Label:    label,
		Reason:   reason,
	}
}

// MarkSubmitted terminates the attempt successfully.
func (a *ApplicationAttempt) MarkSubmitted() {
	a.Status = OutcomeSubmitted
	a.FinishedAt = time.Now()
}

// MarkAborted terminates the attempt with the given failure context.
func (a *ApplicationAttempt) MarkAborted(ctx AttemptContext) {
	a.Status = OutcomeAborted
	a.Failure = &ctx
	a.FinishedAt = time.Now()
}

// Terminated reports whether the attempt reached a terminal outcome.
func (a *ApplicationAttempt) Terminated() bool {
	return a.Status != OutcomePending
}

// AttemptRecord is the persisted, flattened form of a terminated attempt.
type AttemptRecord struct {
	ID            uuid.UUID     `json:"id"`
	JobTitle      string        `json:"job_title"`
	Company       string        `json:"company"`
	Location      string        `json:"location"`
	JobLink       string        `json:"job_link"`
	HiringContact string        `json:"hiring_contact,omitempty"`
	Status        OutcomeStatus `json:"status"`
	FailedPage    int           `json:"failed_page,omitempty"`
	FailedLabel   string        `json:"failed_label,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	ResumePath    string        `json:"resume_path,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
	FinishedAt    time.Time     `json:"finished_at"`
}

// Record flattens the attempt for persistence.
func (a *ApplicationAttempt) Record() AttemptRecord {
	rec := AttemptRecord{
		ID:            a.ID,
		JobTitle:      a.Job.Title,
		Company:       a.Job.Company,
		Location:      a.Job.Location,
		JobLink:       a.Job.Link,
		HiringContact: a.Job.HiringContact,
		Status:        a.Status,
		ResumePath:    a.ResumePath,
		StartedAt:     a.StartedAt,
		FinishedAt:    a.FinishedAt,
	}
	if a.Failure != nil {
		rec.FailedPage = a.Failure.Page
		rec.FailedLabel = a.Failure.Label
		rec.Reason = a.Failure.Reason
	}
	return rec
}
