package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ayu-zh/placement-connector/internal/model"
)

func newJobsCmd(rt *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Job posting commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List job postings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.requireSession(); err != nil {
				return err
			}
			jobs, err := rt.client.ListJobs(cmd.Context())
			if err != nil {
				return err
			}
			rt.out.Print(jobs)
			return nil
		},
	})
	cmd.AddCommand(newJobsAddCmd(rt))
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a job posting (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.requireAdmin(); err != nil {
				return err
			}
			if err := rt.client.DeleteJob(cmd.Context(), args[0]); err != nil {
				return err
			}
			rt.out.PrintMessage("Deleted job " + args[0])
			return nil
		},
	})

	return cmd
}

func newJobsAddCmd(rt *env) *cobra.Command {
	var job model.Job
	var jobType, deadline, requirements string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Post a job (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.requireAdmin(); err != nil {
				return err
			}
			if deadline != "" {
				t, err := time.Parse(time.DateOnly, deadline)
				if err != nil {
					return fmt.Errorf("invalid --deadline %q: use YYYY-MM-DD", deadline)
				}
				job.Deadline = t
			}
			job.Type = model.JobType(jobType)
			job.Requirements = splitList(requirements)

			created, err := rt.client.CreateJob(cmd.Context(), job)
			if err != nil {
				return err
			}
			rt.out.Print(created)
			return nil
		},
	}

	cmd.Flags().StringVar(&job.Title, "title", "", "Job title (required)")
	cmd.Flags().StringVar(&job.Company, "company", "", "Company (required)")
	cmd.Flags().StringVar(&job.Location, "location", "", "Location")
	cmd.Flags().StringVar(&jobType, "type", string(model.JobFullTime), "Full-time, Part-time, Internship or Contract")
	cmd.Flags().StringVar(&job.Salary, "salary", "", "Salary")
	cmd.Flags().StringVar(&job.Description, "description", "", "Description")
	cmd.Flags().StringVar(&requirements, "requirements", "", "Comma-separated requirements")
	cmd.Flags().StringVar(&deadline, "deadline", "", "Application deadline (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("company")

	return cmd
}

func newStudentsCmd(rt *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "students",
		Short: "Student record commands (admin)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List students",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.requireAdmin(); err != nil {
				return err
			}
			students, err := rt.client.ListStudents(cmd.Context())
			if err != nil {
				return err
			}
			rt.out.Print(students)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "verify <id>",
		Short: "Toggle a student's verification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.requireAdmin(); err != nil {
				return err
			}
			student, err := rt.client.ToggleVerification(cmd.Context(), model.IdentityID(args[0]))
			if err != nil {
				return err
			}
			rt.out.Print(student)
			return nil
		},
	})

	return cmd
}

func newTeammatesCmd(rt *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teammates",
		Short: "Hackathon teammate board commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "search [query]",
		Short: "Search teammate requests",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.requireSession(); err != nil {
				return err
			}
			var query string
			if len(args) == 1 {
				query = args[0]
			}
			requests, err := rt.client.SearchTeammates(cmd.Context(), query)
			if err != nil {
				return err
			}
			rt.out.Print(requests)
			return nil
		},
	})
	cmd.AddCommand(newTeammatesPostCmd(rt))

	return cmd
}

func newTeammatesPostCmd(rt *env) *cobra.Command {
	var req model.TeammateRequest
	var skills string

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a teammate request",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.requireSession(); err != nil {
				return err
			}
			req.Skills = splitList(skills)
			created, err := rt.client.PostTeammate(cmd.Context(), req)
			if err != nil {
				return err
			}
			rt.out.Print(created)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.HackathonName, "hackathon", "", "Hackathon name (required)")
	cmd.Flags().StringVar(&req.Description, "description", "", "What you are looking for (required)")
	cmd.Flags().StringVar(&skills, "skills", "", "Comma-separated skills")
	cmd.Flags().IntVar(&req.TeamSize, "team-size", 1, "Team members needed")
	cmd.Flags().StringVar(&req.Contact, "contact", "", "Contact details")
	_ = cmd.MarkFlagRequired("hackathon")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func newStatsCmd(rt *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.requireAdmin(); err != nil {
				return err
			}
			stats, err := rt.client.Stats(cmd.Context())
			if err != nil {
				return err
			}
			rt.out.Print(stats)
			return nil
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
