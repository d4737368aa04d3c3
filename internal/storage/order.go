package storage

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/Ayu-zh/placement-connector/internal/model"
)

// NormalizeEmail is the canonical form emails are indexed under
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// byCreated orders records oldest first, breaking ties on ID.
// Every backend returns lists in this order.
func byCreated[T any](items []T, created func(T) time.Time, id func(T) string) {
	slices.SortFunc(items, func(a, b T) int {
		if c := created(a).Compare(created(b)); c != 0 {
			return c
		}
		return cmp.Compare(id(a), id(b))
	})
}

func SortIdentities(items []*model.Identity) {
	byCreated(items, func(i *model.Identity) time.Time { return i.CreatedAt }, func(i *model.Identity) string { return string(i.ID) })
}

func SortAuthSessions(items []*model.AuthSession) {
	byCreated(items, func(s *model.AuthSession) time.Time { return s.CreatedAt }, func(s *model.AuthSession) string { return string(s.ID) })
}

func SortJobs(items []*model.Job) {
	byCreated(items, func(j *model.Job) time.Time { return j.CreatedAt }, func(j *model.Job) string { return j.ID })
}

func SortCertifications(items []*model.Certification) {
	byCreated(items, func(c *model.Certification) time.Time { return c.CreatedAt }, func(c *model.Certification) string { return c.ID })
}

func SortHackathons(items []*model.Hackathon) {
	byCreated(items, func(h *model.Hackathon) time.Time { return h.CreatedAt }, func(h *model.Hackathon) string { return h.ID })
}

func SortTeammateRequests(items []*model.TeammateRequest) {
	byCreated(items, func(r *model.TeammateRequest) time.Time { return r.CreatedAt }, func(r *model.TeammateRequest) string { return r.ID })
}
