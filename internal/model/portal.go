package model

import "time"

// JobType classifies a job posting
type JobType string

const (
	JobFullTime   JobType = "Full-time"
	JobPartTime   JobType = "Part-time"
	JobInternship JobType = "Internship"
	JobContract   JobType = "Contract"
)

// Job is a placement opportunity posted by the placement cell
type Job struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Company      string     `json:"company"`
	Location     string     `json:"location"`
	Type         JobType    `json:"type"`
	Salary       string     `json:"salary,omitempty"`
	Description  string     `json:"description"`
	Requirements []string   `json:"requirements,omitempty"`
	Deadline     time.Time  `json:"deadline"`
	PostedBy     IdentityID `json:"posted_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Open reports whether the job still accepts applications at now
func (j *Job) Open(now time.Time) bool {
	return j.Deadline.IsZero() || !now.After(j.Deadline)
}

// Certification is a course or credential advertised to students
type Certification struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Provider    string    `json:"provider"`
	Description string    `json:"description"`
	Link        string    `json:"link,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	Level       string    `json:"level,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Hackathon is an event students can take part in
type Hackathon struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Organizer   string    `json:"organizer"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	Link        string    `json:"link,omitempty"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TeammateRequest is a student's call for hackathon teammates
type TeammateRequest struct {
	ID            string     `json:"id"`
	AuthorID      IdentityID `json:"author_id"`
	AuthorName    string     `json:"author_name"`
	HackathonName string     `json:"hackathon_name"`
	Description   string     `json:"description"`
	Skills        []string   `json:"skills,omitempty"`
	TeamSize      int        `json:"team_size"`
	Contact       string     `json:"contact,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// DashboardStats is the placement cell's aggregate view
type DashboardStats struct {
	TotalStudents       int            `json:"total_students"`
	ActiveStudents      int            `json:"active_students"`
	VerifiedStudents    int            `json:"verified_students"`
	StudentsByDept      map[string]int `json:"students_by_department"`
	RegisteredCompanies int            `json:"registered_companies"`
	TotalJobs           int            `json:"total_jobs"`
	OpenJobs            int            `json:"open_jobs"`
	ActiveHackathons    int            `json:"active_hackathons"`
	GeneratedAt         time.Time      `json:"generated_at"`
}
