package model

import (
	"strings"
	"time"
)

// DeadlineLayout is the canonical persisted form.
const DeadlineLayout = "2006-01-02 15:04"

// NoDeadline is the persisted sentinel for an absent deadline.
const NoDeadline = "None"

var deadlineInputLayouts = []string{
	DeadlineLayout,
	"2006-01-02 15:04:05", // older files carry seconds
	"2006-01-02T15:04",
}

// Deadline is an optional date and time-of-day, minute precision, no zone.
type Deadline struct {
	t     time.Time
	valid bool
}

func NewDeadline(t time.Time) Deadline {
	return Deadline{
		t:     time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC),
		valid: true,
	}
}

// ParseDeadline accepts "", "None" or a date-time in one of the input layouts.
func ParseDeadline(s string) (Deadline, error) {
	v := strings.TrimSpace(s)
	if v == "" || strings.EqualFold(v, NoDeadline) {
		return Deadline{}, nil
	}
	for _, layout := range deadlineInputLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return NewDeadline(t), nil
		}
	}
	return Deadline{}, &FieldError{Field: "deadline", Value: s, Reason: "must be YYYY-MM-DD HH:MM or None"}
}

func (d Deadline) IsSet() bool { return d.valid }

func (d Deadline) Time() time.Time { return d.t }

func (d Deadline) String() string {
	if !d.valid {
		return NoDeadline
	}
	return d.t.Format(DeadlineLayout)
}

// Before orders deadlines chronologically with the absent deadline last.
func (d Deadline) Before(o Deadline) bool {
	switch {
	case !d.valid:
		return false
	case !o.valid:
		return true
	}
	return d.t.Before(o.t)
}

func (d Deadline) Equal(o Deadline) bool {
	return d.valid == o.valid && d.t.Equal(o.t)
}

func (d Deadline) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Deadline) UnmarshalText(b []byte) error {
	parsed, err := ParseDeadline(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
