// Package seed loads the demo accounts and postings the portal ships with.
package seed

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Ayu-zh/placement-connector/internal/model"
	"github.com/Ayu-zh/placement-connector/internal/services/catalog"
	"github.com/Ayu-zh/placement-connector/internal/services/identity"
	"github.com/Ayu-zh/placement-connector/internal/services/jobs"
)

const (
	AdminEmail      = "admin@college.edu"
	AdminPassword   = "admin123"
	StudentPassword = "password123"
)

// Services are the collaborators the seed writes through
type Services struct {
	Identity *identity.Service
	Jobs     *jobs.Service
	Catalog  *catalog.Service
}

var demoStudents = []identity.NewIdentity{
	{Name: "Rahul Sharma", Email: "rahul.s@college.edu", Department: "Computer Science", Year: "4th Year", Status: model.StatusActive, Verified: true},
	{Name: "Priya Patel", Email: "priya.p@college.edu", Department: "Electronics", Year: "3rd Year", Status: model.StatusActive, Verified: true},
	{Name: "Ajay Kumar", Email: "ajay.k@college.edu", Department: "Mechanical", Year: "4th Year", Status: model.StatusInactive, Verified: false},
	{Name: "Neha Gupta", Email: "neha.g@college.edu", Department: "Civil", Year: "2nd Year", Status: model.StatusActive, Verified: true},
	{Name: "Vikram Singh", Email: "vikram.s@college.edu", Department: "Computer Science", Year: "4th Year", Status: model.StatusSuspended, Verified: true},
}

// Demo loads the demo data. It is a no-op when the admin account already
// exists, so restarting against a durable backend does not duplicate rows.
func Demo(ctx context.Context, svc Services, now time.Time, logger *slog.Logger) error {
	admin, err := svc.Identity.Register(ctx, identity.NewIdentity{
		Name:     "Admin User",
		Email:    AdminEmail,
		Password: AdminPassword,
		Role:     model.RoleAdmin,
		Verified: true,
	})
	if errors.Is(err, model.ErrEmailTaken) {
		logger.Info("demo data already present")
		return nil
	}
	if err != nil {
		return err
	}

	for _, student := range demoStudents {
		student.Password = StudentPassword
		student.Role = model.RoleStudent
		if _, err := svc.Identity.Register(ctx, student); err != nil {
			return err
		}
	}

	for _, job := range demoJobs(now) {
		if _, err := svc.Jobs.Create(ctx, admin, job); err != nil {
			return err
		}
	}
	for _, cert := range demoCertifications() {
		if _, err := svc.Catalog.CreateCertification(ctx, admin, cert); err != nil {
			return err
		}
	}
	for _, h := range demoHackathons(now) {
		if _, err := svc.Catalog.CreateHackathon(ctx, admin, h); err != nil {
			return err
		}
	}

	logger.Info("demo data loaded", slog.Int("students", len(demoStudents)))
	return nil
}

func demoJobs(now time.Time) []*model.Job {
	day := 24 * time.Hour
	return []*model.Job{
		{Title: "Software Engineer", Company: "TechCorp", Location: "Bangalore, India", Type: model.JobFullTime, Salary: "₹12-15 LPA", Deadline: now.Add(14 * day)},
		{Title: "Data Analyst", Company: "DataSys Inc", Location: "Hyderabad, India", Type: model.JobInternship, Salary: "₹40,000/month", Deadline: now.Add(17 * day)},
		{Title: "Frontend Developer", Company: "WebTech Solutions", Location: "Mumbai, India", Type: model.JobFullTime, Salary: "₹10-12 LPA", Deadline: now.Add(30 * day)},
		{Title: "Product Manager", Company: "Innovation Labs", Location: "Pune, India", Type: model.JobFullTime, Salary: "₹18-22 LPA", Deadline: now.Add(35 * day)},
	}
}

func demoCertifications() []*model.Certification {
	return []*model.Certification{
		{Title: "AWS Certified Cloud Practitioner", Provider: "Amazon Web Services", Level: "Beginner", Duration: "6 weeks", Active: true},
		{Title: "Google Data Analytics", Provider: "Google", Level: "Intermediate", Duration: "3 months", Active: true},
	}
}

func demoHackathons(now time.Time) []*model.Hackathon {
	start := now.Add(21 * 24 * time.Hour)
	return []*model.Hackathon{
		{Title: "Smart India Hackathon", Organizer: "Ministry of Education", Location: "Online", StartDate: start, EndDate: start.Add(36 * time.Hour), Active: true},
	}
}
