package store

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/nakachan-ing/tsk-cli/internal/model"
)

// Journal records a move between two separately written collections.
// The destination write is the commit point: an intent whose task already
// sits in the destination is finished on the next load, any other intent is
// discarded.
type Journal struct {
	path string
}

func NewJournal(path string) *Journal {
	return &Journal{path: path}
}

func (j *Journal) Path() string { return j.path }

func (j *Journal) Begin(task model.Task, from, to model.Collection) (model.MoveIntent, error) {
	intent := model.MoveIntent{
		ID:        uuid.New().String(),
		From:      from,
		To:        to,
		Task:      task,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	if err := saveYAML(j.path, intent); err != nil {
		return model.MoveIntent{}, fmt.Errorf("failed to write move journal: %w", err)
	}
	return intent, nil
}

// Pending returns the outstanding intent, or nil.
func (j *Journal) Pending() (*model.MoveIntent, error) {
	var intent model.MoveIntent
	found, err := loadYAML(j.path, &intent)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	if !intent.From.Valid() || !intent.To.Valid() || intent.From == intent.To || intent.Task.Title == "" {
		return nil, fmt.Errorf("malformed move journal %s", j.path)
	}
	return &intent, nil
}

func (j *Journal) Clear() error {
	if err := os.Remove(j.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove move journal: %w", err)
	}
	return nil
}
