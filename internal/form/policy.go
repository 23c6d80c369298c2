package form

import "fmt"

// CardGroupPolicy decides what happens on repeatable card-group pages.
type CardGroupPolicy string

const (
	CardGroupSkip CardGroupPolicy = "skip"
	CardGroupFail CardGroupPolicy = "fail"
)

// CoverLetterPolicy decides what happens with cover letter upload fields.
type CoverLetterPolicy string

const (
	CoverLetterFail   CoverLetterPolicy = "fail"
	CoverLetterSkip   CoverLetterPolicy = "skip"
	CoverLetterUpload CoverLetterPolicy = "upload"
)

// Policies are the configurable decisions for fields the walker cannot answer itself.
type Policies struct {
	CardGroup       CardGroupPolicy
	CoverLetter     CoverLetterPolicy
	ResumePath      string
	CoverLetterPath string
}

// DefaultPolicies skips card groups and fails on cover letters.
func DefaultPolicies() Policies {
	return Policies{CardGroup: CardGroupSkip, CoverLetter: CoverLetterFail}
}

// ParseCardGroupPolicy maps a config value to a CardGroupPolicy; empty means skip.
func ParseCardGroupPolicy(s string) (CardGroupPolicy, error) {
	switch p := CardGroupPolicy(s); p {
	case "":
		return CardGroupSkip, nil
	case CardGroupSkip, CardGroupFail:
		return p, nil
	default:
		return "", fmt.Errorf("unknown card group policy %q", s)
	}
}

// ParseCoverLetterPolicy maps a config value to a CoverLetterPolicy; empty means fail.
func ParseCoverLetterPolicy(s string) (CoverLetterPolicy, error) {
	switch p := CoverLetterPolicy(s); p {
	case "":
		return CoverLetterFail, nil
	case CoverLetterFail, CoverLetterSkip, CoverLetterUpload:
		return p, nil
	default:
		return "", fmt.Errorf("unknown cover letter policy %q", s)
	}
}
