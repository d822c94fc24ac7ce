package listings

import (
	"cmp"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/akshayks13/genai-frontend-sub000/internal/types"
)

// FilterError reports an unusable filter parameter.
type FilterError struct {
	Field   string
	Message string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Job sort orders.
const (
	SortRecent  = "recent"
	SortTitle   = "title"
	SortCompany = "company"
	SortSalary  = "salary"
)

// Trend sort orders.
const (
	SortGrowth = "growth"
	SortDemand = "demand"
	SortName   = "name"
)

// JobFilter narrows and orders career listings.
type JobFilter struct {
	Query     string
	Location  string
	WorkMode  string
	MinSalary float64
	Sort      string
}

// ParseJobFilter reads q, location, workMode, minSalary and sort.
func ParseJobFilter(v url.Values) (JobFilter, error) {
	f := JobFilter{
		Query:    strings.TrimSpace(v.Get("q")),
		Location: strings.TrimSpace(v.Get("location")),
		WorkMode: strings.TrimSpace(v.Get("workMode")),
		Sort:     strings.ToLower(strings.TrimSpace(v.Get("sort"))),
	}

	if raw := strings.TrimSpace(v.Get("minSalary")); raw != "" {
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || n < 0 {
			return f, &FilterError{Field: "minSalary", Message: "must be a non-negative number"}
		}
		f.MinSalary = n
	}

	switch f.Sort {
	case "", SortRecent, SortTitle, SortCompany, SortSalary:
	default:
		return f, &FilterError{Field: "sort", Message: fmt.Sprintf("unknown order %q", f.Sort)}
	}
	return f, nil
}

// FilterJobs returns the jobs matching f in f's order. Ties keep the input
// order.
func FilterJobs(jobs []types.Job, f JobFilter) []types.Job {
	out := make([]types.Job, 0, len(jobs))
	for _, j := range jobs {
		if f.matches(j) {
			out = append(out, j)
		}
	}

	switch f.Sort {
	case SortRecent:
		slices.SortStableFunc(out, func(a, b types.Job) int {
			ta, oka := postedTime(a.PostedAt)
			tb, okb := postedTime(b.PostedAt)
			switch {
			case oka && okb:
				return tb.Compare(ta)
			case oka:
				return -1
			case okb:
				return 1
			}
			return 0
		})
	case SortTitle:
		slices.SortStableFunc(out, func(a, b types.Job) int { return compareFold(a.Title, b.Title) })
	case SortCompany:
		slices.SortStableFunc(out, func(a, b types.Job) int { return compareFold(a.Company, b.Company) })
	case SortSalary:
		slices.SortStableFunc(out, func(a, b types.Job) int { return cmp.Compare(b.Salary, a.Salary) })
	}
	return out
}

func (f JobFilter) matches(j types.Job) bool {
	if f.Query != "" {
		hay := []string{j.Title, j.Company, j.Description, j.Summary, strings.Join(j.Skills, " ")}
		if !containsFold(strings.Join(hay, "\n"), f.Query) {
			return false
		}
	}
	if f.Location != "" && !containsFold(j.Location, f.Location) {
		return false
	}
	if f.WorkMode != "" && !strings.EqualFold(j.WorkMode, f.WorkMode) {
		return false
	}
	if f.MinSalary > 0 && j.Salary < f.MinSalary {
		return false
	}
	return true
}

// TrendFilter narrows and orders trends.
type TrendFilter struct {
	Category string
	Query    string
	Sort     string
}

// ParseTrendFilter reads category, q and sort.
func ParseTrendFilter(v url.Values) (TrendFilter, error) {
	f := TrendFilter{
		Category: strings.TrimSpace(v.Get("category")),
		Query:    strings.TrimSpace(v.Get("q")),
		Sort:     strings.ToLower(strings.TrimSpace(v.Get("sort"))),
	}
	switch f.Sort {
	case "", SortGrowth, SortDemand, SortName:
	default:
		return f, &FilterError{Field: "sort", Message: fmt.Sprintf("unknown order %q", f.Sort)}
	}
	return f, nil
}

// FilterTrends returns the trends matching f in f's order. Ties keep the
// input order.
func FilterTrends(trends []types.Trend, f TrendFilter) []types.Trend {
	out := make([]types.Trend, 0, len(trends))
	for _, t := range trends {
		if f.Category != "" && !strings.EqualFold(t.Category, f.Category) {
			continue
		}
		if f.Query != "" && !containsFold(t.Name+"\n"+t.Description, f.Query) {
			continue
		}
		out = append(out, t)
	}

	switch f.Sort {
	case SortGrowth:
		slices.SortStableFunc(out, func(a, b types.Trend) int { return cmp.Compare(b.Growth, a.Growth) })
	case SortDemand:
		slices.SortStableFunc(out, func(a, b types.Trend) int { return cmp.Compare(b.Demand, a.Demand) })
	case SortName:
		slices.SortStableFunc(out, func(a, b types.Trend) int { return compareFold(a.Name, b.Name) })
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

var postedLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// postedTime parses a listing date. Listings without one sort last.
func postedTime(s string) (time.Time, bool) {
	for _, layout := range postedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
