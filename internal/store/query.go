package store

import (
	"slices"
	"strings"

	"github.com/nakachan-ing/tsk-cli/internal/model"
)

// Filter narrows the pending collection. A nil field matches everything.
type Filter struct {
	Category *model.Category
	Priority *model.Priority
}

func (f Filter) Match(t model.Task) bool {
	if f.Category != nil && t.Category != *f.Category {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	return true
}

// ParseFilter builds a Filter from raw front-end values; "" and "all" mean
// no constraint.
func ParseFilter(category, priority string) (Filter, error) {
	var f Filter
	if v := strings.TrimSpace(category); v != "" && !strings.EqualFold(v, "all") {
		c, err := model.ParseCategory(v)
		if err != nil {
			return Filter{}, err
		}
		f.Category = &c
	}
	if v := strings.TrimSpace(priority); v != "" && !strings.EqualFold(v, "all") {
		p, err := model.ParsePriority(v)
		if err != nil {
			return Filter{}, err
		}
		f.Priority = &p
	}
	return f, nil
}

// Filter returns the pending tasks matching f, in stored order.
func (s *Store) Filter(f Filter) ([]model.Task, error) {
	pending, err := s.Load(model.Pending)
	if err != nil {
		return nil, err
	}
	return FilterTasks(pending, f), nil
}

func FilterTasks(tasks []model.Task, f Filter) []model.Task {
	out := []model.Task{}
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

type SortKey string

const (
	SortByTitle    SortKey = "title"
	SortByCategory SortKey = "category"
	SortByPriority SortKey = "priority"
	SortByDeadline SortKey = "deadline"
	SortByStatus   SortKey = "status"
)

var SortKeys = []SortKey{SortByTitle, SortByCategory, SortByPriority, SortByDeadline, SortByStatus}

func ParseSortKey(s string) (SortKey, error) {
	v := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(SortKeys, v) {
		return v, nil
	}
	return "", &model.FieldError{Field: "sort key", Value: s, Reason: "must be title, category, priority, deadline or status"}
}

// Sort returns collection c ordered by key. The stored order is not changed.
func (s *Store) Sort(c model.Collection, key SortKey) ([]model.Task, error) {
	if !slices.Contains(SortKeys, key) {
		return nil, invalid("sort", &model.FieldError{Field: "sort key", Value: string(key), Reason: "unknown"})
	}
	tasks, err := s.Load(c)
	if err != nil {
		return nil, err
	}
	SortTasks(tasks, key)
	return tasks, nil
}

// SortTasks sorts in place, stably. Text fields compare byte-wise on their
// stored value (so "High" < "Low" < "Medium"), deadlines chronologically
// with "no deadline" last.
func SortTasks(tasks []model.Task, key SortKey) {
	slices.SortStableFunc(tasks, compareBy(key))
}

func compareBy(key SortKey) func(a, b model.Task) int {
	switch key {
	case SortByCategory:
		return func(a, b model.Task) int { return strings.Compare(string(a.Category), string(b.Category)) }
	case SortByPriority:
		return func(a, b model.Task) int { return strings.Compare(string(a.Priority), string(b.Priority)) }
	case SortByDeadline:
		return func(a, b model.Task) int {
			switch {
			case a.Deadline.Before(b.Deadline):
				return -1
			case b.Deadline.Before(a.Deadline):
				return 1
			}
			return 0
		}
	case SortByStatus:
		return func(a, b model.Task) int { return strings.Compare(string(a.Status), string(b.Status)) }
	default:
		return func(a, b model.Task) int { return strings.Compare(a.Title, b.Title) }
	}
}
