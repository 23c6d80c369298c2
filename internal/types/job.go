// Package types provides type definitions for structured data used throughout the quick-apply agent.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "fmt"

// JobListing is one posting surfaced by a search query.
// Description and HiringContact are filled lazily, once the listing is opened.
type JobListing struct {
	Title          string `json:"title" yaml:"title"`
	Company        string `json:"company" yaml:"company"`
	Location       string `json:"location" yaml:"location"`
	Link           string `json:"link" yaml:"link"`
	Description    string `json:"description,omitempty" yaml:"description,omitempty"`
	HiringContact  string `json:"hiring_contact,omitempty" yaml:"hiring_contact,omitempty"`
	AlreadyApplied bool   `json:"already_applied" yaml:"already_applied"`
}

// String renders the listing as "Title (Company)".
func (j JobListing) String() string {
	return fmt.Sprintf("%s (%s)", j.Title, j.Company)
}
