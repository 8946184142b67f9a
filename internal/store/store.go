package store

import (
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"strings"
	"sync"

	"github.com/nakachan-ing/tsk-cli/internal/model"
)

// Locker guards the backing storage against other processes.
type Locker interface {
	Lock() error
	Unlock() error
}

// Store owns the pending and completed collections. Every operation is a
// locked read-modify-write against the backend; nothing is cached between
// calls.
type Store struct {
	mu      sync.Mutex
	backend Backend
	journal *Journal
	locker  Locker
	logger  *log.Logger
}

type Option func(*Store)

// WithJournal enables the move journal for backends that cannot move a
// record in one write.
func WithJournal(path string) Option {
	return func(s *Store) { s.journal = NewJournal(path) }
}

func WithLocker(l Locker) Option {
	return func(s *Store) { s.locker = l }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close releases the backend handle, if any.
func (s *Store) Close() error {
	if c, ok := s.backend.(Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Store) acquire(op string) (func(), error) {
	s.mu.Lock()
	if s.locker == nil {
		return s.mu.Unlock, nil
	}
	if err := s.locker.Lock(); err != nil {
		s.mu.Unlock()
		return nil, storageErr(op, err)
	}
	return func() {
		if err := s.locker.Unlock(); err != nil {
			s.logger.Printf("⚠️ Failed to release lock: %v", err)
		}
		s.mu.Unlock()
	}, nil
}

// read loads both collections, finishes or discards any journalled move and
// repairs inconsistent records, persisting the repaired collections.
func (s *Store) read(op string) (*snapshot, error) {
	var intent *model.MoveIntent
	if s.journal != nil {
		var err error
		intent, err = s.journal.Pending()
		if err != nil {
			return nil, storageErr(op, err)
		}
	}

	pending, err := s.backend.Load(model.Pending)
	if err != nil {
		return nil, storageErr(op, err)
	}
	completed, err := s.backend.Load(model.Completed)
	if err != nil {
		return nil, storageErr(op, err)
	}
	snap := &snapshot{pending: pending, completed: completed}

	dirty := s.repair(snap, intent)
	// completed first: a crash in between leaves a duplicate that repair
	// resolves the same way next time
	for _, c := range []model.Collection{model.Completed, model.Pending} {
		if !dirty[c] {
			continue
		}
		if err := s.backend.Save(c, snap.get(c)); err != nil {
			return nil, storageErr(op, fmt.Errorf("failed to persist repaired %s collection: %w", c, err))
		}
	}

	if intent != nil {
		if err := s.journal.Clear(); err != nil {
			return nil, storageErr(op, err)
		}
	}
	return snap, nil
}

// Initialize creates both collections if they do not exist. It never
// overwrites existing data and is safe to call on every start.
func (s *Store) Initialize() error {
	const op = "initialize"
	release, err := s.acquire(op)
	if err != nil {
		return err
	}
	defer release()

	if err := s.backend.Init(); err != nil {
		return storageErr(op, err)
	}
	_, err = s.read(op)
	return err
}

// Load returns the current contents of c.
func (s *Store) Load(c model.Collection) ([]model.Task, error) {
	const op = "load"
	if !c.Valid() {
		return nil, invalid(op, &model.FieldError{Field: "collection", Value: string(c), Reason: "must be pending or completed"})
	}
	release, err := s.acquire(op)
	if err != nil {
		return nil, err
	}
	defer release()

	snap, err := s.read(op)
	if err != nil {
		return nil, err
	}
	return slices.Clone(snap.get(c)), nil
}

// Add validates in and appends it to the pending collection.
func (s *Store) Add(in model.TaskInput) (model.Task, error) {
	const op = "add"
	task, err := in.Validate()
	if err != nil {
		return model.Task{}, invalid(op, err)
	}

	release, err := s.acquire(op)
	if err != nil {
		return model.Task{}, err
	}
	defer release()

	snap, err := s.read(op)
	if err != nil {
		return model.Task{}, err
	}
	if c, _, ok := snap.find(task.Title); ok {
		return model.Task{}, duplicate(op, task.Title, c)
	}

	pending := append(slices.Clone(snap.pending), task)
	if err := s.backend.Save(model.Pending, pending); err != nil {
		return model.Task{}, storageErr(op, err)
	}
	s.logger.Printf("✅ Added %q", task.Title)
	return task, nil
}

// Modify updates a pending task in place. Completed tasks cannot be
// modified and report ErrNotFound.
func (s *Store) Modify(title string, upd model.TaskUpdate) (model.Task, error) {
	const op = "modify"
	title = strings.TrimSpace(title)

	release, err := s.acquire(op)
	if err != nil {
		return model.Task{}, err
	}
	defer release()

	snap, err := s.read(op)
	if err != nil {
		return model.Task{}, err
	}
	i := indexOf(snap.pending, title)
	if i < 0 {
		return model.Task{}, notFound(op, title, model.Pending)
	}

	updated, err := upd.Apply(snap.pending[i])
	if err != nil {
		return model.Task{}, invalid(op, err)
	}
	if updated.Title != title {
		if c, _, ok := snap.find(updated.Title); ok {
			return model.Task{}, duplicate(op, updated.Title, c)
		}
	}

	pending := slices.Clone(snap.pending)
	pending[i] = updated
	if err := s.backend.Save(model.Pending, pending); err != nil {
		return model.Task{}, storageErr(op, err)
	}
	s.logger.Printf("✅ Modified %q", title)
	return updated, nil
}

// Delete removes title from the given collection and returns the removed task.
func (s *Store) Delete(title string, from model.Collection) (model.Task, error) {
	const op = "delete"
	title = strings.TrimSpace(title)
	if !from.Valid() {
		return model.Task{}, invalid(op, &model.FieldError{Field: "collection", Value: string(from), Reason: "must be pending or completed"})
	}

	release, err := s.acquire(op)
	if err != nil {
		return model.Task{}, err
	}
	defer release()

	snap, err := s.read(op)
	if err != nil {
		return model.Task{}, err
	}
	tasks := snap.get(from)
	i := indexOf(tasks, title)
	if i < 0 {
		return model.Task{}, notFound(op, title, from)
	}
	removed := tasks[i]
	if err := s.backend.Save(from, without(tasks, i)); err != nil {
		return model.Task{}, storageErr(op, err)
	}
	s.logger.Printf("✅ Deleted %q from %s", title, from)
	return removed, nil
}

// Complete moves a pending task to the completed collection.
func (s *Store) Complete(title string) (model.Task, error) {
	return s.transition("complete", title, model.Pending, model.Completed)
}

// Reopen moves a completed task back to the pending collection.
func (s *Store) Reopen(title string) (model.Task, error) {
	return s.transition("reopen", title, model.Completed, model.Pending)
}

// transition moves title from one collection to the other. On any error the
// record stays where it was, or, if the destination was already written and
// could not be rolled back, the journal lets the next load finish the move.
func (s *Store) transition(op, title string, from, to model.Collection) (model.Task, error) {
	title = strings.TrimSpace(title)

	release, err := s.acquire(op)
	if err != nil {
		return model.Task{}, err
	}
	defer release()

	snap, err := s.read(op)
	if err != nil {
		return model.Task{}, err
	}
	src, dst := snap.get(from), snap.get(to)
	i := indexOf(src, title)
	if i < 0 {
		return model.Task{}, notFound(op, title, from)
	}
	moved := src[i]
	moved.Status = to.Status()

	if mover, ok := s.backend.(Mover); ok {
		if err := mover.Move(moved, from, to); err != nil {
			return model.Task{}, storageErr(op, err)
		}
		s.logger.Printf("✅ Moved %q to %s", title, to)
		return moved, nil
	}

	if s.journal != nil {
		if _, err := s.journal.Begin(moved, from, to); err != nil {
			return model.Task{}, storageErr(op, err)
		}
	}

	newDst := append(slices.Clone(dst), moved)
	if err := s.backend.Save(to, newDst); err != nil {
		s.clearJournal()
		return model.Task{}, storageErr(op, err)
	}

	if err := s.backend.Save(from, without(src, i)); err != nil {
		if rerr := s.backend.Save(to, dst); rerr != nil {
			s.logger.Printf("❌ Failed to roll back %s collection, %q is in both until the next load: %v", to, title, rerr)
			return model.Task{}, storageErr(op, errors.Join(err, rerr))
		}
		s.clearJournal()
		return model.Task{}, storageErr(op, err)
	}

	s.clearJournal()
	s.logger.Printf("✅ Moved %q to %s", title, to)
	return moved, nil
}

// clearJournal is best effort: a stale intent is harmless because it is only
// acted on when its task is present in both collections.
func (s *Store) clearJournal() {
	if s.journal == nil {
		return
	}
	if err := s.journal.Clear(); err != nil {
		s.logger.Printf("⚠️ %v", err)
	}
}
