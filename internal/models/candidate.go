package models

// Candidate is one applicant as structured by the extraction agent.
// A trailing asterisk marks a value the model was unsure about; an empty
// string means nothing was found.
type Candidate struct {
	Name              string `json:"name"`
	BirthDate         string `json:"birth_date"`
	Gender            string `json:"gender"`
	Email             string `json:"email"`
	PhoneNumber       string `json:"phone_number"`
	LinkedInProfile   string `json:"linkedin_profile"`
	University        string `json:"university"`
	Study             string `json:"study"`
	MScStartDate      string `json:"msc_start_date"`
	MScGraduationDate string `json:"msc_graduation_date"`
	CurrentEmployer   string `json:"current_employer"`
}

// UncertainMarker is appended to a field value the model guessed.
const UncertainMarker = "*"

// CandidateField describes one row of the results table.
type CandidateField struct {
	Key   string
	Label string
	Get   func(*Candidate) string
	Set   func(*Candidate, string)
}

// CandidateFields lists the candidate fields in display order.
var CandidateFields = []CandidateField{
	{"name", "Name", func(c *Candidate) string { return c.Name }, func(c *Candidate, v string) { c.Name = v }},
	{"birth_date", "Birth date", func(c *Candidate) string { return c.BirthDate }, func(c *Candidate, v string) { c.BirthDate = v }},
	{"gender", "Gender", func(c *Candidate) string { return c.Gender }, func(c *Candidate, v string) { c.Gender = v }},
	{"email", "Email", func(c *Candidate) string { return c.Email }, func(c *Candidate, v string) { c.Email = v }},
	{"phone_number", "Phone number", func(c *Candidate) string { return c.PhoneNumber }, func(c *Candidate, v string) { c.PhoneNumber = v }},
	{"linkedin_profile", "LinkedIn profile", func(c *Candidate) string { return c.LinkedInProfile }, func(c *Candidate, v string) { c.LinkedInProfile = v }},
	{"university", "University", func(c *Candidate) string { return c.University }, func(c *Candidate, v string) { c.University = v }},
	{"study", "Study", func(c *Candidate) string { return c.Study }, func(c *Candidate, v string) { c.Study = v }},
	{"msc_start_date", "MSc start date", func(c *Candidate) string { return c.MScStartDate }, func(c *Candidate, v string) { c.MScStartDate = v }},
	{"msc_graduation_date", "MSc graduation date", func(c *Candidate) string { return c.MScGraduationDate }, func(c *Candidate, v string) { c.MScGraduationDate = v }},
	{"current_employer", "Current employer", func(c *Candidate) string { return c.CurrentEmployer }, func(c *Candidate, v string) { c.CurrentEmployer = v }},
}

// PlaceholderCandidate is shown before any run has produced results.
var PlaceholderCandidate = Candidate{
	Name:              "name",
	BirthDate:         "01-01-1990",
	Gender:            "male",
	Email:             "name@example.com",
	PhoneNumber:       "1234567890",
	LinkedInProfile:   "linkedin.com/in/name",
	University:        "University of Example",
	Study:             "Computer Science",
	MScStartDate:      "01-09-2015",
	MScGraduationDate: "01-06-2017",
	CurrentEmployer:   "Example Corp",
}
