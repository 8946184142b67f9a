package store

import (
	"slices"

	"github.com/nakachan-ing/tsk-cli/internal/model"
)

// snapshot is both collections as read in one locked section.
type snapshot struct {
	pending   []model.Task
	completed []model.Task
}

func (s *snapshot) get(c model.Collection) []model.Task {
	if c == model.Completed {
		return s.completed
	}
	return s.pending
}

func (s *snapshot) set(c model.Collection, tasks []model.Task) {
	if c == model.Completed {
		s.completed = tasks
	} else {
		s.pending = tasks
	}
}

// find returns the collection holding title and its index there.
func (s *snapshot) find(title string) (model.Collection, int, bool) {
	if i := indexOf(s.pending, title); i >= 0 {
		return model.Pending, i, true
	}
	if i := indexOf(s.completed, title); i >= 0 {
		return model.Completed, i, true
	}
	return "", -1, false
}

func indexOf(tasks []model.Task, title string) int {
	return slices.IndexFunc(tasks, func(t model.Task) bool { return t.Title == title })
}

func without(tasks []model.Task, i int) []model.Task {
	out := make([]model.Task, 0, len(tasks)-1)
	out = append(out, tasks[:i]...)
	return append(out, tasks[i+1:]...)
}

// repair brings a freshly loaded snapshot back to a consistent state and
// reports which collections have to be rewritten.
//
//   - status always matches the holding collection
//   - a title appears once per collection (first occurrence wins)
//   - a journalled move whose task reached its destination is finished
//   - any other title found in both collections stays only in completed
func (st *Store) repair(snap *snapshot, intent *model.MoveIntent) map[model.Collection]bool {
	dirty := map[model.Collection]bool{}

	for _, c := range []model.Collection{model.Pending, model.Completed} {
		tasks := snap.get(c)
		seen := make(map[string]bool, len(tasks))
		kept := make([]model.Task, 0, len(tasks))
		for _, t := range tasks {
			if seen[t.Title] {
				st.logger.Printf("⚠️ Dropping duplicate %q from %s collection", t.Title, c)
				dirty[c] = true
				continue
			}
			seen[t.Title] = true
			if t.Status != c.Status() {
				st.logger.Printf("⚠️ Fixing status of %q in %s collection: %s -> %s", t.Title, c, t.Status, c.Status())
				t.Status = c.Status()
				dirty[c] = true
			}
			kept = append(kept, t)
		}
		snap.set(c, kept)
	}

	if intent != nil {
		from, to := snap.get(intent.From), snap.get(intent.To)
		if i := indexOf(from, intent.Task.Title); i >= 0 && indexOf(to, intent.Task.Title) >= 0 {
			st.logger.Printf("🔄 Finishing interrupted move of %q from %s to %s", intent.Task.Title, intent.From, intent.To)
			snap.set(intent.From, without(from, i))
			dirty[intent.From] = true
		}
	}

	for i := 0; i < len(snap.pending); {
		title := snap.pending[i].Title
		if indexOf(snap.completed, title) >= 0 {
			st.logger.Printf("⚠️ %q found in both collections, keeping the completed copy", title)
			snap.pending = without(snap.pending, i)
			dirty[model.Pending] = true
			continue
		}
		i++
	}

	return dirty
}
