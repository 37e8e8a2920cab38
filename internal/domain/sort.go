package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

type SortField string

const (
	SortByName       SortField = "name"
	SortBySlug       SortField = "slug"
	SortByType       SortField = "type"
	SortByStatus     SortField = "status"
	SortByOwner      SortField = "owner"
	SortByMinVersion SortField = "min_version"
	SortByStartDate  SortField = "start_date"
	SortByEnrollment SortField = "enrollment"
	SortByCreated    SortField = "created"
)

// SortExperiments orders experiments in place. An empty field keeps the
// input order.
func SortExperiments(experiments []*Experiment, field SortField, descending bool) error {
	if field == "" {
		return nil
	}

	var less func(a, b *Experiment) int
	switch field {
	case SortByMinVersion:
		less = func(a, b *Experiment) int {
			return majorVersion(a.FirefoxMinVersion) - majorVersion(b.FirefoxMinVersion)
		}
	case SortByName, SortBySlug, SortByType, SortByStatus, SortByOwner,
		SortByStartDate, SortByEnrollment, SortByCreated:
		selector := sortSelector(field)
		less = func(a, b *Experiment) int {
			return strings.Compare(selector(a), selector(b))
		}
	default:
		return fmt.Errorf("unknown sort field %q", field)
	}

	order := 1
	if descending {
		order = -1
	}
	sort.SliceStable(experiments, func(i, j int) bool {
		return order*less(experiments[i], experiments[j]) < 0
	})
	return nil
}

func sortSelector(field SortField) func(*Experiment) string {
	switch field {
	case SortByName:
		return func(e *Experiment) string { return e.Name }
	case SortBySlug:
		return func(e *Experiment) string { return e.Slug }
	case SortByType:
		return func(e *Experiment) string { return string(e.Type) }
	case SortByStatus:
		return func(e *Experiment) string { return string(e.Status) }
	case SortByOwner:
		return func(e *Experiment) string { return e.Owner }
	case SortByStartDate:
		return func(e *Experiment) string {
			if e.ProposedStartDate == nil {
				return ""
			}
			return e.ProposedStartDate.UTC().Format(time.RFC3339)
		}
	case SortByEnrollment:
		return EnrollmentSortKey
	default:
		return func(e *Experiment) string { return e.CreatedAt.UTC().Format(time.RFC3339) }
	}
}

// EnrollmentSortKey is the enrollment end date when the start is known,
// otherwise the proposed enrollment in days.
func EnrollmentSortKey(e *Experiment) string {
	if e.ProposedStartDate != nil {
		end := e.ProposedStartDate.AddDate(0, 0, e.ProposedEnrollment)
		return end.UTC().Format(time.RFC3339)
	}
	return strconv.Itoa(e.ProposedEnrollment)
}

func majorVersion(v string) int {
	major, _, _ := strings.Cut(v, ".")
	n, err := strconv.Atoi(major)
	if err != nil {
		return 0
	}
	return n
}
