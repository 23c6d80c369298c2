package types

import "github.com/jonathan/quick-apply/internal/browser"

// FieldKind is the semantic type of a form field.
type FieldKind int

const (
	// FieldUnknown is the zero value; the classifier never returns it.
	FieldUnknown FieldKind = iota
	FieldFreeText
	FieldSingleSelectList
	FieldRadioGroup
	FieldCheckbox
	FieldUploadResume
	FieldUploadCoverLetter
	// FieldUnstructuredCardGroup is a repeatable-group section that cannot be decomposed.
	FieldUnstructuredCardGroup
)

var fieldKindNames = map[FieldKind]string{
	FieldUnknown:               "unknown",
	FieldFreeText:              "free_text",
	FieldSingleSelectList:      "single_select_list",
	FieldRadioGroup:            "radio_group",
	FieldCheckbox:              "checkbox",
	FieldUploadResume:          "upload_resume",
	FieldUploadCoverLetter:     "upload_cover_letter",
	FieldUnstructuredCardGroup: "unstructured_card_group",
}

func (k FieldKind) String() string {
	if name, ok := fieldKindNames[k]; ok {
		return name
	}
	return fieldKindNames[FieldUnknown]
}

// HasChoices reports whether fields of this kind carry a choice list.
func (k FieldKind) HasChoices() bool {
	switch k {
	case FieldSingleSelectList, FieldRadioGroup, FieldCheckbox:
		return true
	}
	return false
}

// NeedsAnswer reports whether the field must be routed through an answer source.
// Uploads take a configured file and card groups are skipped.
func (k FieldKind) NeedsAnswer() bool {
	switch k {
	case FieldFreeText, FieldSingleSelectList, FieldRadioGroup, FieldCheckbox:
		return true
	}
	return false
}

// FormField is one answerable unit on the current wizard page.
// Handle is borrowed from the page driver and is only valid until the page re-renders,
// so fields are never kept across pages.
type FormField struct {
	Kind    FieldKind
	Label   string
	Choices []string
	Handle  browser.Handle
}
