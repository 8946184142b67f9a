package store

import "github.com/nakachan-ing/tsk-cli/internal/model"

// Backend persists the two task collections.
//
// Load of a collection that was never written returns an empty slice and no
// error. Save replaces the whole collection and must not leave it partially
// written.
type Backend interface {
	Init() error
	Load(c model.Collection) ([]model.Task, error)
	Save(c model.Collection, tasks []model.Task) error
}

// Mover is implemented by backends that can move a record between
// collections in a single atomic write. task is the record as it must
// appear in to.
type Mover interface {
	Move(task model.Task, from, to model.Collection) error
}

// Closer is implemented by backends holding an open handle.
type Closer interface {
	Close() error
}
