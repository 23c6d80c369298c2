package types

import "time"

// RunStats counts what one run did with the listings it saw.
type RunStats struct {
	Queries             int           `json:"queries"`
	ResultPages         int           `json:"result_pages"`
	Listings            int           `json:"listings"`
	SkippedApplied      int           `json:"skipped_applied"`
	SkippedBlacklisted  int           `json:"skipped_blacklisted"`
	SkippedNoQuickApply int           `json:"skipped_no_quick_apply"`
	Submitted           int           `json:"submitted"`
	Failed              int           `json:"failed"`
	Duration            time.Duration `json:"duration"`
}

// Attempted is the number of listings whose form was opened.
func (s RunStats) Attempted() int {
	return s.Submitted + s.Failed
}
