package util

import (
	"strings"
	"time"

	"github.com/nakachan-ing/tsk-cli/internal/model"
)

// FullTextSearch keeps tasks whose title contains query, ignoring case.
func FullTextSearch(tasks []model.Task, query string) []model.Task {
	if query == "" {
		return tasks
	}

	query = strings.ToLower(query)
	var filtered []model.Task
	for _, task := range tasks {
		if strings.Contains(strings.ToLower(task.Title), query) {
			filtered = append(filtered, task)
		}
	}
	return filtered
}

const dateLayout = "2006-01-02"

// FilterByDeadline keeps tasks whose deadline falls within [fromDate, toDate]
// (YYYY-MM-DD, either may be empty). With any bound set, tasks without a
// deadline are dropped.
func FilterByDeadline(tasks []model.Task, fromDate, toDate string) ([]model.Task, error) {
	from, err := parseBound("from", fromDate)
	if err != nil {
		return nil, err
	}
	to, err := parseBound("to", toDate)
	if err != nil {
		return nil, err
	}
	if from.IsZero() && to.IsZero() {
		return tasks, nil
	}

	var filtered []model.Task
	for _, task := range tasks {
		if IsWithinDateRange(task.Deadline, from, to) {
			filtered = append(filtered, task)
		}
	}
	return filtered, nil
}

func parseBound(name, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, &model.FieldError{Field: name + " date", Value: value, Reason: "must be YYYY-MM-DD"}
	}
	return t, nil
}

// IsWithinDateRange compares only the date part of d. A zero bound is open.
func IsWithinDateRange(d model.Deadline, from, to time.Time) bool {
	if from.IsZero() && to.IsZero() {
		return true
	}
	if !d.IsSet() {
		return false
	}

	t := d.Time()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if !from.IsZero() && day.Before(from) {
		return false
	}
	if !to.IsZero() && day.After(to) {
		return false
	}
	return true
}
