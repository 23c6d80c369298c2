package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jonathan/quick-apply/internal/types"
)

func records() []types.AttemptRecord {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return []types.AttemptRecord{
		{JobTitle: "Backend Engineer", Company: "Initech", JobLink: "https://example.com/1", Status: types.OutcomeSubmitted, StartedAt: start},
		{JobTitle: "Data Engineer", Company: "Globex", JobLink: "https://example.com/2", Status: types.OutcomeAborted,
			FailedPage: 2, FailedLabel: "Years of Rust", Reason: "model reported no data", StartedAt: start},
		{JobTitle: "SRE", Company: "Hooli", Status: types.OutcomeAborted, FailedPage: 1, Reason: "model reported no data", StartedAt: start},
		{JobTitle: "QA", Company: "Umbrella", Status: types.OutcomeAborted, Reason: "no submit control", StartedAt: start},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(records())
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Submitted)
	assert.Equal(t, 3, s.Aborted)
	assert.Equal(t, map[string]int{"model reported no data": 2, "no submit control": 1}, s.Reasons)
	assert.Equal(t, []string{"model reported no data", "no submit control"}, sortedReasons(s.Reasons))
}

func TestWriteExcel(t *testing.T) {
	out, err := WriteExcel(records(), filepath.Join(t.TempDir(), "attempts"), time.Now())
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", filepath.Ext(out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Attempts"}, f.GetSheetList())

	total, err := f.GetCellValue("Summary", "B3")
	require.NoError(t, err)
	assert.Equal(t, "4", total)

	topReason, err := f.GetCellValue("Summary", "A8")
	require.NoError(t, err)
	assert.Equal(t, "model reported no data", topReason)

	rows, err := f.GetRows("Attempts")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, attemptHeaders, rows[0])
	assert.Equal(t, "Data Engineer", rows[2][1])
	assert.Equal(t, "aborted", rows[2][4])
	assert.Equal(t, "2", rows[2][5])
	assert.Equal(t, "Years of Rust", rows[2][6])
}
