package model

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
	CategorySchool   Category = "School"
	CategoryOthers   Category = "Others"
)

// Categories in the order the form cycles through them.
var Categories = []Category{CategoryWork, CategoryPersonal, CategorySchool, CategoryOthers}

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

type Status string

const (
	StatusPending Status = "Pending"
	StatusDone    Status = "Done"
)

// Collection names one of the two persisted task sets.
type Collection string

const (
	Pending   Collection = "pending"
	Completed Collection = "completed"
)

// Status returns the status every record held by c must carry.
func (c Collection) Status() Status {
	if c == Completed {
		return StatusDone
	}
	return StatusPending
}

// Other returns the opposite collection.
func (c Collection) Other() Collection {
	if c == Completed {
		return Pending
	}
	return Completed
}

func (c Collection) Valid() bool {
	return c == Pending || c == Completed
}

func ParseCollection(s string) (Collection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "tasks", "":
		return Pending, nil
	case "completed", "done":
		return Completed, nil
	}
	return "", &FieldError{Field: "collection", Value: s, Reason: "must be pending or completed"}
}

func ParseCategory(s string) (Category, error) {
	v := strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(v, string(c)) {
			return c, nil
		}
	}
	return "", &FieldError{Field: "category", Value: s, Reason: "must be one of Work, Personal, School, Others"}
}

func ParsePriority(s string) (Priority, error) {
	v := strings.TrimSpace(s)
	for _, p := range Priorities {
		if strings.EqualFold(v, string(p)) {
			return p, nil
		}
	}
	return "", &FieldError{Field: "priority", Value: s, Reason: "must be one of High, Medium, Low"}
}

func ParseStatus(s string) (Status, error) {
	switch {
	case strings.EqualFold(strings.TrimSpace(s), string(StatusPending)):
		return StatusPending, nil
	case strings.EqualFold(strings.TrimSpace(s), string(StatusDone)):
		return StatusDone, nil
	}
	return "", &FieldError{Field: "status", Value: s, Reason: "must be Pending or Done"}
}

type Task struct {
	Title    string   `json:"title" yaml:"title"`
	Category Category `json:"category" yaml:"category"`
	Priority Priority `json:"priority" yaml:"priority"`
	Deadline Deadline `json:"deadline" yaml:"deadline"`
	Status   Status   `json:"status" yaml:"status"`
}

// Row returns the task in persisted column order.
func (t Task) Row() []string {
	return []string{t.Title, string(t.Category), string(t.Priority), t.Deadline.String(), string(t.Status)}
}

// Columns is the canonical header of a persisted collection.
var Columns = []string{"title", "category", "priority", "deadline", "status"}

// TaskInput is unvalidated data for a new task, as collected by a front end.
type TaskInput struct {
	Title    string
	Category string
	Priority string
	Deadline string // "" or "None" for no deadline
}

// Validate turns the raw input into a canonical pending Task.
func (in TaskInput) Validate() (Task, error) {
	title, err := ValidateTitle(in.Title)
	if err != nil {
		return Task{}, err
	}
	category, err := ParseCategory(in.Category)
	if err != nil {
		return Task{}, err
	}
	priority, err := ParsePriority(in.Priority)
	if err != nil {
		return Task{}, err
	}
	deadline, err := ParseDeadline(in.Deadline)
	if err != nil {
		return Task{}, err
	}
	return Task{
		Title:    title,
		Category: category,
		Priority: priority,
		Deadline: deadline,
		Status:   StatusPending,
	}, nil
}

// TaskUpdate carries the fields to change; nil leaves a field untouched.
type TaskUpdate struct {
	Title    *string `yaml:"title,omitempty"`
	Category *string `yaml:"category,omitempty"`
	Priority *string `yaml:"priority,omitempty"`
	Deadline *string `yaml:"deadline,omitempty"`
}

func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Category == nil && u.Priority == nil && u.Deadline == nil
}

// Apply returns a copy of t with the update applied and validated.
// Status is never touched.
func (u TaskUpdate) Apply(t Task) (Task, error) {
	out := t
	if u.Title != nil {
		title, err := ValidateTitle(*u.Title)
		if err != nil {
			return Task{}, err
		}
		out.Title = title
	}
	if u.Category != nil {
		c, err := ParseCategory(*u.Category)
		if err != nil {
			return Task{}, err
		}
		out.Category = c
	}
	if u.Priority != nil {
		p, err := ParsePriority(*u.Priority)
		if err != nil {
			return Task{}, err
		}
		out.Priority = p
	}
	if u.Deadline != nil {
		d, err := ParseDeadline(*u.Deadline)
		if err != nil {
			return Task{}, err
		}
		out.Deadline = d
	}
	return out, nil
}

func ValidateTitle(s string) (string, error) {
	title := strings.TrimSpace(s)
	if title == "" {
		return "", &FieldError{Field: "title", Value: s, Reason: "must not be empty"}
	}
	if strings.ContainsAny(title, "\r\n") {
		return "", &FieldError{Field: "title", Value: s, Reason: "must be a single line"}
	}
	return title, nil
}

// ParseRow decodes one persisted row. The returned task keeps the stored
// status; callers decide what to do when it disagrees with the collection.
func ParseRow(row []string) (Task, error) {
	if len(row) != len(Columns) {
		return Task{}, fmt.Errorf("expected %d columns, got %d", len(Columns), len(row))
	}
	in := TaskInput{Title: row[0], Category: row[1], Priority: row[2], Deadline: row[3]}
	t, err := in.Validate()
	if err != nil {
		return Task{}, err
	}
	status, err := ParseStatus(row[4])
	if err != nil {
		return Task{}, err
	}
	t.Status = status
	return t, nil
}
