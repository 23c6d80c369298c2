package answer

import (
	"strings"

	"github.com/jonathan/quick-apply/internal/types"
)

// Entry produces the direct answer for a known label. choices is nil for free-text questions.
type Entry func(p *types.Profile, choices []string) (string, bool)

// DirectLookup answers known question labels straight from the profile.
type DirectLookup struct {
	profile *types.Profile
	entries map[string]Entry
}

// NewDirectLookup builds the lookup table. overrides add fixed answers keyed by label
// and take precedence over the built-in entries.
func NewDirectLookup(profile *types.Profile, overrides map[string]string) *DirectLookup {
	entries := make(map[string]Entry, len(builtinEntries)+len(overrides))
	for _, group := range builtinEntries {
		for _, label := range group.labels {
			entries[NormalizeLabel(label)] = group.entry
		}
	}
	for label, value := range overrides {
		entries[NormalizeLabel(label)] = fixed(value)
	}
	return &DirectLookup{profile: profile, entries: entries}
}

// Lookup returns the direct answer for question, if the label is known and the profile has a value.
func (d *DirectLookup) Lookup(question string, choices []string) (string, bool) {
	entry, ok := d.entries[NormalizeLabel(question)]
	if !ok || d.profile == nil {
		return "", false
	}
	v, ok := entry(d.profile, choices)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

type entryGroup struct {
	labels []string
	entry  Entry
}

var builtinEntries = []entryGroup{
	{[]string{"First name", "Name"}, personal(func(p types.Personal) string { return p.Name })},
	{[]string{"Last name", "Surname", "Family name"}, personal(func(p types.Personal) string { return p.Surname })},
	{[]string{"Full name", "Legal name"}, personal(func(p types.Personal) string { return p.FullName() })},
	{[]string{"Email", "Email address"}, personal(func(p types.Personal) string { return p.Email })},
	{[]string{"Mobile phone number", "Phone", "Phone number"}, personal(func(p types.Personal) string { return p.Phone })},
	{[]string{"Phone country code"}, phoneCountryCode},
	{[]string{"LinkedIn", "LinkedIn Profile", "LinkedIn profile URL", "LinkedIn URL"}, personal(func(p types.Personal) string { return p.LinkedIn })},
	{[]string{"GitHub", "GitHub profile", "GitHub URL"}, personal(func(p types.Personal) string { return p.GitHub })},
	{[]string{"City", "Location (city)"}, personal(func(p types.Personal) string { return p.City })},
	{[]string{"Country"}, personal(func(p types.Personal) string { return p.Country })},
	{[]string{
		"I agree to the Terms and Conditions",
		"I agree to the Terms & Conditions",
		"I accept the Terms and Conditions",
		"Terms and Conditions",
		"I have read and agree to the Privacy Policy",
		"I acknowledge the Privacy Policy",
		"Privacy Policy",
	}, acknowledge},
}

func personal(get func(types.Personal) string) Entry {
	return func(p *types.Profile, _ []string) (string, bool) {
		v := get(p.Personal)
		return v, v != ""
	}
}

func fixed(value string) Entry {
	return func(_ *types.Profile, _ []string) (string, bool) {
		return value, value != ""
	}
}

// acknowledge ticks the first offered box, or answers "Yes" to a free-text acknowledgement.
func acknowledge(_ *types.Profile, choices []string) (string, bool) {
	if len(choices) > 0 {
		return choices[0], true
	}
	return "Yes", true
}

// phoneCountryCode picks the option carrying the profile's dialling prefix, e.g. "United States (+1)".
func phoneCountryCode(p *types.Profile, choices []string) (string, bool) {
	prefix := strings.TrimSpace(p.Personal.PhonePrefix)
	if prefix == "" {
		return "", false
	}
	if !strings.HasPrefix(prefix, "+") {
		prefix = "+" + prefix
	}
	if len(choices) == 0 {
		return prefix, true
	}
	for _, c := range choices {
		if strings.Contains(c, "("+prefix+")") {
			if p.Personal.Country == "" || strings.Contains(strings.ToLower(c), strings.ToLower(p.Personal.Country)) {
				return c, true
			}
		}
	}
	for _, c := range choices {
		if strings.Contains(c, "("+prefix+")") {
			return c, true
		}
	}
	return "", false
}
