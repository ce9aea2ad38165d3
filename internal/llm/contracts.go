package llm

// ResumeData is the validated structured output of the parse stage.
// Instances are only handed out after schema validation has passed.
type ResumeData struct {
	PersonalInfo   PersonalInfo    `json:"personal_info"`
	Experience     []Experience    `json:"experience,omitempty"`
	Education      []Education     `json:"education,omitempty"`
	Skills         []Skill         `json:"skills,omitempty"`
	Certifications []Certification `json:"certifications,omitempty"`
	Languages      []Language      `json:"languages,omitempty"`
	Projects       []Project       `json:"projects,omitempty"`
	Awards         []Award         `json:"awards,omitempty"`
	Publications   []Publication   `json:"publications,omitempty"`
	Interests      []string        `json:"interests,omitempty"`
	References     []Reference     `json:"references,omitempty"`
}

type Location struct {
	City        string `json:"city,omitempty"`
	Region      string `json:"region,omitempty"` // state or province
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"country_code,omitempty"` // ISO 3166-1 alpha-2
	PostalCode  string `json:"postal_code,omitempty"`
	Address     string `json:"address,omitempty"`
}

type ProfileURL struct {
	Type  string `json:"type,omitempty"` // website, linkedin, github, ...
	URL   string `json:"url"`
	Label string `json:"label,omitempty"`
}

type PersonalInfo struct {
	Name        string       `json:"name"`
	Label       string       `json:"label,omitempty"` // professional title or tagline
	Email       string       `json:"email,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Location    *Location    `json:"location,omitempty"`
	URLs        []ProfileURL `json:"urls,omitempty"`
	DateOfBirth string       `json:"date_of_birth,omitempty"` // YYYY-MM-DD
}

type Experience struct {
	Type        string    `json:"type,omitempty"` // full-time, contract, internship, ...
	Company     string    `json:"company"`
	Title       string    `json:"title"`
	Location    *Location `json:"location,omitempty"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date,omitempty"` // empty means current
	Current     bool      `json:"current,omitempty"`
	Description string    `json:"description,omitempty"`
	Highlights  []string  `json:"highlights,omitempty"`
}

type GPA struct {
	Value float64 `json:"value"`
	Max   float64 `json:"max"`
}

type Education struct {
	Institution    string    `json:"institution"`
	Degree         string    `json:"degree,omitempty"`
	FieldOfStudy   string    `json:"field_of_study,omitempty"`
	Location       *Location `json:"location,omitempty"`
	StartDate      string    `json:"start_date,omitempty"`
	GraduationDate string    `json:"graduation_date,omitempty"`
	GPA            *GPA      `json:"gpa,omitempty"`
	Honors         string    `json:"honors,omitempty"`
	Courses        []string  `json:"courses,omitempty"`
}

type Skill struct {
	Skill           string  `json:"skill"` // original name as written
	Category        string  `json:"category,omitempty"`
	SkillType       string  `json:"skill_type,omitempty"`  // hard | soft
	Proficiency     string  `json:"proficiency,omitempty"` // basic .. expert
	YearsExperience float64 `json:"years_experience,omitempty"`
	LastUsed        string  `json:"last_used,omitempty"`
}

type Certification struct {
	Name           string `json:"name"`
	Issuer         string `json:"issuer,omitempty"`
	Date           string `json:"date,omitempty"`
	ExpirationDate string `json:"expiration_date,omitempty"`
	CredentialID   string `json:"credential_id,omitempty"`
	URL            string `json:"url,omitempty"`
}

type Language struct {
	Language    string `json:"language"`
	Proficiency string `json:"proficiency,omitempty"` // ILR scale
	Fluency     string `json:"fluency,omitempty"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Role         string   `json:"role,omitempty"`
	URL          string   `json:"url,omitempty"`
	StartDate    string   `json:"start_date,omitempty"`
	EndDate      string   `json:"end_date,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	Highlights   []string `json:"highlights,omitempty"`
}

type Award struct {
	Title       string `json:"title"`
	Awarder     string `json:"awarder,omitempty"`
	Date        string `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
}

type Publication struct {
	Title           string   `json:"title"`
	Publisher       string   `json:"publisher,omitempty"`
	PublicationDate string   `json:"publication_date,omitempty"`
	URL             string   `json:"url,omitempty"`
	Authors         []string `json:"authors,omitempty"`
	Description     string   `json:"description,omitempty"`
}

type Reference struct {
	Name         string `json:"name,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	Company      string `json:"company,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// UsageRecord is one entry of the run's usage ledger: exactly one per model
// invocation, in chronological order. Zero token counts mean the provider
// reported no accounting.
type UsageRecord struct {
	Step         string `json:"step"` // constants.StepOCR | constants.StepParse
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}
