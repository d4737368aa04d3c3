package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/Ayu-zh/placement-connector/internal/api/response"
	"github.com/Ayu-zh/placement-connector/internal/model"
	"github.com/Ayu-zh/placement-connector/internal/session"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w, errW io.Writer) *Output {
	return &Output{format: format, w: w, errW: errW}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.errW, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errW, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Whoami:
		o.printWhoami(v)
	case ChangeLine:
		o.printChange(v)
	case []model.Job:
		o.printJobs(v)
	case *model.Job:
		o.printJobs([]model.Job{*v})
	case []model.Identity:
		o.printStudents(v)
	case *model.Identity:
		o.printStudents([]model.Identity{*v})
	case []model.TeammateRequest:
		o.printTeammates(v)
	case *model.TeammateRequest:
		o.printTeammates([]model.TeammateRequest{*v})
	case *model.DashboardStats:
		o.printStats(v)
	case *response.Health:
		_, _ = fmt.Fprintf(o.w, "Server status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Whoami describes the session bound to the token file
type Whoami struct {
	State    session.State   `json:"state"`
	Admin    bool            `json:"admin"`
	Identity *model.Identity `json:"identity,omitempty"`
}

// ChangeLine is one session transition printed by watch
type ChangeLine struct {
	Time   time.Time     `json:"time"`
	State  session.State `json:"state"`
	Reason string        `json:"reason"`
	Email  string        `json:"email,omitempty"`
	Admin  bool          `json:"admin"`
}

func newChangeLine(c session.Change, now time.Time) ChangeLine {
	line := ChangeLine{Time: now, State: c.State, Reason: c.Reason}
	if c.Identity != nil {
		line.Email = c.Identity.Email
		line.Admin = c.Identity.IsAdmin()
	}
	return line
}

func (o *Output) printWhoami(w Whoami) {
	if w.Identity == nil {
		_, _ = fmt.Fprintf(o.w, "Not logged in (%s)\n", w.State)
		return
	}
	_, _ = fmt.Fprintf(o.w, "Logged in as: %s <%s>\n", w.Identity.Name, w.Identity.Email)
	_, _ = fmt.Fprintf(o.w, "ID: %s\n", w.Identity.ID)
	_, _ = fmt.Fprintf(o.w, "Role: %s\n", w.Identity.Role)
	_, _ = fmt.Fprintf(o.w, "Verified: %s\n", yesNo(w.Identity.Verified))
	_, _ = fmt.Fprintf(o.w, "Admin access: %s\n", yesNo(w.Admin))
}

func (o *Output) printChange(c ChangeLine) {
	timestamp := c.Time.Format("2006-01-02 15:04:05")
	who := c.Email
	if who == "" {
		who = "-"
	}
	_, _ = fmt.Fprintf(o.w, "[%s] %s (%s) %s\n", timestamp, c.State, c.Reason, who)
}

func (o *Output) printJobs(jobs []model.Job) {
	if len(jobs) == 0 {
		_, _ = fmt.Fprintln(o.w, "No jobs")
		return
	}
	for _, j := range jobs {
		_, _ = fmt.Fprintf(o.w, "%s  %s at %s (%s, %s) deadline %s\n",
			j.ID, j.Title, j.Company, j.Type, j.Location, j.Deadline.Format("2006-01-02"))
	}
}

func (o *Output) printStudents(students []model.Identity) {
	if len(students) == 0 {
		_, _ = fmt.Fprintln(o.w, "No students")
		return
	}
	for _, s := range students {
		_, _ = fmt.Fprintf(o.w, "%s  %s <%s> %s %s status=%s verified=%s\n",
			s.ID, s.Name, s.Email, s.Department, s.Year, s.Status, yesNo(s.Verified))
	}
}

func (o *Output) printTeammates(requests []model.TeammateRequest) {
	if len(requests) == 0 {
		_, _ = fmt.Fprintln(o.w, "No teammate requests")
		return
	}
	for _, r := range requests {
		_, _ = fmt.Fprintf(o.w, "%s  %s by %s (team of %d): %s [%s]\n",
			r.ID, r.HackathonName, r.AuthorName, r.TeamSize, r.Description, strings.Join(r.Skills, ", "))
	}
}

func (o *Output) printStats(s *model.DashboardStats) {
	_, _ = fmt.Fprintf(o.w, "Students: %d total, %d active, %d verified\n", s.TotalStudents, s.ActiveStudents, s.VerifiedStudents)
	depts := make([]string, 0, len(s.StudentsByDept))
	for d := range s.StudentsByDept {
		depts = append(depts, d)
	}
	sort.Strings(depts)
	for _, d := range depts {
		_, _ = fmt.Fprintf(o.w, "  %s: %d\n", d, s.StudentsByDept[d])
	}
	_, _ = fmt.Fprintf(o.w, "Companies: %d\n", s.RegisteredCompanies)
	_, _ = fmt.Fprintf(o.w, "Jobs: %d total, %d open\n", s.TotalJobs, s.OpenJobs)
	_, _ = fmt.Fprintf(o.w, "Active hackathons: %d\n", s.ActiveHackathons)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
