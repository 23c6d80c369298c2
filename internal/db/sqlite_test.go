package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/quick-apply/internal/types"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "nested", "attempts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newAttempt(title, link string, started time.Time) *types.ApplicationAttempt {
	a := types.NewApplicationAttempt(types.JobListing{Title: title, Company: "Initech", Location: "Remote", Link: link})
	a.StartedAt = started
	return a
}

func TestSQLite_RecordAndList(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	ok := newAttempt("Backend Engineer", "https://example.com/jobs/1", base)
	ok.ResumePath = "/data/resume.pdf"
	ok.MarkSubmitted()
	require.NoError(t, s.RecordSuccess(ctx, ok))

	failed := newAttempt("Data Engineer", "https://example.com/jobs/2", base.Add(time.Hour))
	failed.Page = 3
	failed.MarkAborted(failed.Context("Years of experience", "model reported no data"))
	require.NoError(t, s.RecordFailure(ctx, failed))

	all, err := s.ListAttempts(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Data Engineer", all[0].JobTitle, "newest first")
	assert.Equal(t, types.OutcomeAborted, all[0].Status)
	assert.Equal(t, 3, all[0].FailedPage)
	assert.Equal(t, "Years of experience", all[0].FailedLabel)
	assert.Equal(t, "model reported no data", all[0].Reason)
	assert.Equal(t, ok.ID, all[1].ID)
	assert.True(t, base.Equal(all[1].StartedAt))
	assert.Equal(t, "/data/resume.pdf", all[1].ResumePath)

	submitted, err := s.ListAttempts(ctx, ListOptions{Status: types.OutcomeSubmitted})
	require.NoError(t, err)
	require.Len(t, submitted, 1)
	assert.Equal(t, "Backend Engineer", submitted[0].JobTitle)

	limited, err := s.ListAttempts(ctx, ListOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLite_HasApplied(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	failed := newAttempt("Backend Engineer", "https://example.com/jobs/1", time.Now())
	failed.MarkAborted(failed.Context("", "no submit control"))
	require.NoError(t, s.RecordFailure(ctx, failed))

	applied, err := s.HasApplied(ctx, "https://example.com/jobs/1")
	require.NoError(t, err)
	assert.False(t, applied, "a failed attempt does not count as applied")

	ok := newAttempt("Backend Engineer", "https://example.com/jobs/1", time.Now())
	ok.MarkSubmitted()
	require.NoError(t, s.RecordSuccess(ctx, ok))

	applied, err = s.HasApplied(ctx, "https://example.com/jobs/1")
	require.NoError(t, err)
	assert.True(t, applied)
}

func TestSQLite_GetAttemptAndUpsert(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	missing, err := s.GetAttempt(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	a := newAttempt("Backend Engineer", "https://example.com/jobs/1", time.Now())
	a.MarkAborted(a.Context("", "first"))
	require.NoError(t, s.SaveAttempt(ctx, a.Record()))
	a.MarkSubmitted()
	a.Failure = nil
	require.NoError(t, s.SaveAttempt(ctx, a.Record()))

	got, err := s.GetAttempt(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, types.OutcomeSubmitted, got.Status)
	assert.Empty(t, got.Reason)
}

func TestSQLite_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "attempts.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	a := newAttempt("Backend Engineer", "https://example.com/jobs/1", time.Now())
	a.MarkSubmitted()
	require.NoError(t, s.RecordSuccess(ctx, a))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	records, err := s.ListAttempts(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestOpen_DefaultsToSQLite(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(context.Background(), "", dir)
	require.NoError(t, err)
	defer store.Close()

	s, ok := store.(*SQLite)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, DefaultSQLiteFile), s.Path())
}
