package types

// Profile is the read-only personal and professional data consumed by the answer sources.
type Profile struct {
	Personal           Personal           `json:"personal" yaml:"personal" validate:"required"`
	Education          []Education        `json:"education,omitempty" yaml:"education,omitempty"`
	JobExperience      []JobExperience    `json:"job_experience,omitempty" yaml:"job_experience,omitempty"`
	HardSkills         []string           `json:"hard_skills,omitempty" yaml:"hard_skills,omitempty"`
	SoftSkills         []string           `json:"soft_skills,omitempty" yaml:"soft_skills,omitempty"`
	Projects           []Project          `json:"projects,omitempty" yaml:"projects,omitempty"`
	Achievements       []Achievement      `json:"achievements,omitempty" yaml:"achievements,omitempty"`
	Certifications     []Certification    `json:"certifications,omitempty" yaml:"certifications,omitempty"`
	Languages          []Language         `json:"languages,omitempty" yaml:"languages,omitempty"`
	Interests          []string           `json:"interests,omitempty" yaml:"interests,omitempty"`
	Availability       string             `json:"availability,omitempty" yaml:"availability,omitempty"`
	ExpectedSalaryUSD  string             `json:"expected_salary_range_usd,omitempty" yaml:"expected_salary_range_usd,omitempty"`
	SelfIdentification SelfIdentification `json:"self_identification" yaml:"self_identification"`
	LegalAuthorization LegalAuthorization `json:"legal_authorization" yaml:"legal_authorization"`
	WorkPreferences    WorkPreferences    `json:"work_preferences" yaml:"work_preferences"`
}

// Personal holds contact details.
type Personal struct {
	Name        string `json:"name" yaml:"name" validate:"required"`
	Surname     string `json:"surname" yaml:"surname" validate:"required"`
	Birthday    string `json:"birthday,omitempty" yaml:"birthday,omitempty"`
	Country     string `json:"country,omitempty" yaml:"country,omitempty"`
	City        string `json:"city,omitempty" yaml:"city,omitempty"`
	Address     string `json:"address,omitempty" yaml:"address,omitempty"`
	PhonePrefix string `json:"phone_prefix,omitempty" yaml:"phone_prefix,omitempty"`
	Phone       string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email       string `json:"email" yaml:"email" validate:"required,email"`
	GitHub      string `json:"github,omitempty" yaml:"github,omitempty"`
	LinkedIn    string `json:"linkedin,omitempty" yaml:"linkedin,omitempty"`
	Telegram    string `json:"telegram,omitempty" yaml:"telegram,omitempty"`
}

// FullName returns "Name Surname".
func (p Personal) FullName() string {
	if p.Surname == "" {
		return p.Name
	}
	return p.Name + " " + p.Surname
}

// Education is one degree entry.
type Education struct {
	DegreeName             string `json:"degree_name" yaml:"degree_name"`
	EducationalInstitution string `json:"educational_institution" yaml:"educational_institution"`
	FieldOfStudy           string `json:"field_of_study,omitempty" yaml:"field_of_study,omitempty"`
	DateFrom               string `json:"date_from,omitempty" yaml:"date_from,omitempty"`
	DateTo                 string `json:"date_to,omitempty" yaml:"date_to,omitempty"`
	GPA                    string `json:"gpa,omitempty" yaml:"gpa,omitempty"`
	Exams                  []Exam `json:"exams,omitempty" yaml:"exams,omitempty"`
}

// Exam is a graded exam within an education entry.
type Exam struct {
	Name  string `json:"name" yaml:"name"`
	Score string `json:"score" yaml:"score"`
}

// JobExperience is one position held.
type JobExperience struct {
	Position   string   `json:"position" yaml:"position"`
	Company    string   `json:"company" yaml:"company"`
	Location   string   `json:"location,omitempty" yaml:"location,omitempty"`
	Industry   string   `json:"industry,omitempty" yaml:"industry,omitempty"`
	DateFrom   string   `json:"date_from,omitempty" yaml:"date_from,omitempty"`
	DateTo     string   `json:"date_to,omitempty" yaml:"date_to,omitempty"`
	Highlights []string `json:"highlights,omitempty" yaml:"highlights,omitempty"`
}

type Project struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Link        string `json:"link,omitempty" yaml:"link,omitempty"`
}

type Achievement struct {
	Name        string `json:"name" yaml:"name"`
	Date        string `json:"date,omitempty" yaml:"date,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type Certification struct {
	Name string `json:"name" yaml:"name"`
	Date string `json:"date,omitempty" yaml:"date,omitempty"`
}

type Language struct {
	Language    string `json:"language" yaml:"language"`
	Proficiency string `json:"proficiency" yaml:"proficiency"`
}

// SelfIdentification holds voluntary disclosure answers.
type SelfIdentification struct {
	Gender     string `json:"gender,omitempty" yaml:"gender,omitempty"`
	Pronouns   string `json:"pronouns,omitempty" yaml:"pronouns,omitempty"`
	Veteran    string `json:"veteran,omitempty" yaml:"veteran,omitempty"`
	Disability string `json:"disability,omitempty" yaml:"disability,omitempty"`
	Ethnicity  string `json:"ethnicity,omitempty" yaml:"ethnicity,omitempty"`
}

// LegalAuthorization holds work-authorization flags.
type LegalAuthorization struct {
	EUWorkAuthorization      bool `json:"eu_work_authorization" yaml:"eu_work_authorization"`
	USWorkAuthorization      bool `json:"us_work_authorization" yaml:"us_work_authorization"`
	RequiresUSVisa           bool `json:"requires_us_visa" yaml:"requires_us_visa"`
	RequiresUSSponsorship    bool `json:"requires_us_sponsorship" yaml:"requires_us_sponsorship"`
	RequiresEUVisa           bool `json:"requires_eu_visa" yaml:"requires_eu_visa"`
	LegallyAllowedToWorkInEU bool `json:"legally_allowed_to_work_in_eu" yaml:"legally_allowed_to_work_in_eu"`
	LegallyAllowedToWorkInUS bool `json:"legally_allowed_to_work_in_us" yaml:"legally_allowed_to_work_in_us"`
	RequiresEUSponsorship    bool `json:"requires_eu_sponsorship" yaml:"requires_eu_sponsorship"`
}

// WorkPreferences holds willingness flags.
type WorkPreferences struct {
	RemoteWork                       bool `json:"remote_work" yaml:"remote_work"`
	InPersonWork                     bool `json:"in_person_work" yaml:"in_person_work"`
	OpenToRelocation                 bool `json:"open_to_relocation" yaml:"open_to_relocation"`
	WillingToCompleteAssessments     bool `json:"willing_to_complete_assessments" yaml:"willing_to_complete_assessments"`
	WillingToUndergoDrugTests        bool `json:"willing_to_undergo_drug_tests" yaml:"willing_to_undergo_drug_tests"`
	WillingToUndergoBackgroundChecks bool `json:"willing_to_undergo_background_checks" yaml:"willing_to_undergo_background_checks"`
}
