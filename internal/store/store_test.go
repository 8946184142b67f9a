package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nakachan-ing/tsk-cli/internal/model"
)

func newCSVStore(t *testing.T, opts ...Option) (*Store, *CSVBackend, string) {
	t.Helper()
	dir := t.TempDir()
	backend := NewCSVBackend(filepath.Join(dir, "tasks.csv"), filepath.Join(dir, "completed_tasks.csv"))
	st := New(backend, opts...)
	if err := st.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return st, backend, dir
}

func mustAdd(t *testing.T, st *Store, title, category, priority, deadline string) model.Task {
	t.Helper()
	task, err := st.Add(model.TaskInput{Title: title, Category: category, Priority: priority, Deadline: deadline})
	if err != nil {
		t.Fatalf("Add(%q): %v", title, err)
	}
	return task
}

func mustLoad(t *testing.T, st *Store, c model.Collection) []model.Task {
	t.Helper()
	tasks, err := st.Load(c)
	if err != nil {
		t.Fatalf("Load(%s): %v", c, err)
	}
	return tasks
}

func titles(tasks []model.Task) string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return strings.Join(out, ",")
}

func TestStore_PayRentScenario(t *testing.T) {
	st, _, _ := newCSVStore(t)

	mustAdd(t, st, "Pay rent", "Personal", "High", "2025-03-01 09:00")
	pending := mustLoad(t, st, model.Pending)
	if len(pending) != 1 || pending[0].Title != "Pay rent" || pending[0].Status != model.StatusPending {
		t.Fatalf("unexpected pending after add: %+v", pending)
	}
	before := pending[0]

	done, err := st.Complete("Pay rent")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if done.Status != model.StatusDone {
		t.Fatalf("expected Done, got %s", done.Status)
	}
	if got := mustLoad(t, st, model.Pending); len(got) != 0 {
		t.Fatalf("pending should be empty, got %+v", got)
	}
	completed := mustLoad(t, st, model.Completed)
	if len(completed) != 1 || completed[0].Title != "Pay rent" || completed[0].Status != model.StatusDone {
		t.Fatalf("unexpected completed: %+v", completed)
	}

	if _, err := st.Reopen("Pay rent"); err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	if got := mustLoad(t, st, model.Completed); len(got) != 0 {
		t.Fatalf("completed should be empty, got %+v", got)
	}
	pending = mustLoad(t, st, model.Pending)
	if len(pending) != 1 || strings.Join(pending[0].Row(), ",") != strings.Join(before.Row(), ",") {
		t.Fatalf("reopen did not reverse exactly: %+v vs %+v", pending, before)
	}
}

func TestStore_Add_Rejects(t *testing.T) {
	st, _, _ := newCSVStore(t)

	if _, err := st.Add(model.TaskInput{Title: "", Category: "Work", Priority: "High"}); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("empty title: expected ErrInvalidField, got %v", err)
	}
	if _, err := st.Add(model.TaskInput{Title: "X", Category: "Bogus", Priority: "High"}); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("bogus category: expected ErrInvalidField, got %v", err)
	}
	if _, err := st.Add(model.TaskInput{Title: "X", Category: "Work", Priority: "High", Deadline: "soon"}); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("bad deadline: expected ErrInvalidField, got %v", err)
	}

	mustAdd(t, st, "X", "Work", "High", "")
	_, err := st.Add(model.TaskInput{Title: " X ", Category: "Work", Priority: "High"})
	if !errors.Is(err, ErrDuplicateTitle) {
		t.Fatalf("expected ErrDuplicateTitle, got %v", err)
	}
	var se *Error
	if !errors.As(err, &se) || se.Title != "X" || se.Op != "add" {
		t.Fatalf("expected *Error for X, got %#v", err)
	}

	if got := mustLoad(t, st, model.Pending); len(got) != 1 {
		t.Fatalf("rejected adds must not mutate, got %+v", got)
	}
}

func TestStore_Uniqueness_AcrossCollections(t *testing.T) {
	st, _, _ := newCSVStore(t)
	mustAdd(t, st, "A", "Work", "High", "")
	if _, err := st.Complete("A"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, err := st.Add(model.TaskInput{Title: "A", Category: "Work", Priority: "Low"}); !errors.Is(err, ErrDuplicateTitle) {
		t.Fatalf("expected ErrDuplicateTitle for completed title, got %v", err)
	}

	mustAdd(t, st, "B", "Work", "High", "")
	upd := "A"
	if _, err := st.Modify("B", model.TaskUpdate{Title: &upd}); !errors.Is(err, ErrDuplicateTitle) {
		t.Fatalf("expected ErrDuplicateTitle on rename, got %v", err)
	}
}

func TestStore_Conservation(t *testing.T) {
	st, _, _ := newCSVStore(t)
	for i := 0; i < 5; i++ {
		mustAdd(t, st, fmt.Sprintf("task-%d", i), "Work", "Medium", "")
	}

	ops := []struct {
		complete bool
		title    string
	}{
		{true, "task-0"}, {true, "task-3"}, {false, "task-0"}, {true, "task-1"},
		{true, "task-0"}, {false, "task-3"}, {true, "missing"}, {false, "task-4"},
	}
	for _, op := range ops {
		if op.complete {
			_, _ = st.Complete(op.title)
		} else {
			_, _ = st.Reopen(op.title)
		}
		total := len(mustLoad(t, st, model.Pending)) + len(mustLoad(t, st, model.Completed))
		if total != 5 {
			t.Fatalf("after %+v: total = %d, want 5", op, total)
		}
	}
}

func TestStore_Modify(t *testing.T) {
	st, _, _ := newCSVStore(t)
	mustAdd(t, st, "Essay", "School", "Low", "")
	mustAdd(t, st, "Gym", "Personal", "Low", "")

	same := "Essay"
	prio := "high"
	got, err := st.Modify("Essay", model.TaskUpdate{Title: &same, Priority: &prio})
	if err != nil {
		t.Fatalf("Modify keeping title: %v", err)
	}
	if got.Priority != model.PriorityHigh || got.Status != model.StatusPending {
		t.Fatalf("unexpected %+v", got)
	}

	renamed := "Essay draft"
	if _, err := st.Modify("Essay", model.TaskUpdate{Title: &renamed}); err != nil {
		t.Fatalf("Modify rename: %v", err)
	}
	if got := titles(mustLoad(t, st, model.Pending)); got != "Essay draft,Gym" {
		t.Fatalf("modify must update in place, got %s", got)
	}

	bad := "2025-99-01 00:00"
	if _, err := st.Modify("Gym", model.TaskUpdate{Deadline: &bad}); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
	if _, err := st.Modify("Nope", model.TaskUpdate{Priority: &prio}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := st.Complete("Gym"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, err := st.Modify("Gym", model.TaskUpdate{Priority: &prio}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("modify on completed task: expected ErrNotFound, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	st, _, _ := newCSVStore(t)
	mustAdd(t, st, "A", "Work", "High", "")
	mustAdd(t, st, "B", "Work", "High", "")
	if _, err := st.Complete("B"); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if _, err := st.Delete("B", model.Pending); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for B in pending, got %v", err)
	}
	removed, err := st.Delete("B", model.Completed)
	if err != nil {
		t.Fatalf("Delete completed: %v", err)
	}
	if removed.Title != "B" || removed.Status != model.StatusDone {
		t.Fatalf("unexpected removed task %+v", removed)
	}
	if _, err := st.Delete("A", model.Pending); err != nil {
		t.Fatalf("Delete pending: %v", err)
	}
	if n := len(mustLoad(t, st, model.Pending)) + len(mustLoad(t, st, model.Completed)); n != 0 {
		t.Fatalf("expected empty store, got %d tasks", n)
	}
	if _, err := st.Delete("A", model.Collection("archive")); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField for unknown collection, got %v", err)
	}
}

func TestStore_TransitionNotFound(t *testing.T) {
	st, _, _ := newCSVStore(t)
	mustAdd(t, st, "A", "Work", "High", "")

	if _, err := st.Reopen("A"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("reopen of pending task: expected ErrNotFound, got %v", err)
	}
	if _, err := st.Complete("Z"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("complete of missing task: expected ErrNotFound, got %v", err)
	}
}

func TestStore_Initialize_Idempotent(t *testing.T) {
	st, _, _ := newCSVStore(t)
	mustAdd(t, st, "Keep me", "Others", "Low", "")
	if err := st.Initialize(); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
	if got := mustLoad(t, st, model.Pending); len(got) != 1 {
		t.Fatalf("Initialize must not clobber data, got %+v", got)
	}
}

func TestStore_Load_MissingFilesAreEmpty(t *testing.T) {
	dir := t.TempDir()
	st := New(NewCSVBackend(filepath.Join(dir, "p.csv"), filepath.Join(dir, "c.csv")))
	for _, c := range []model.Collection{model.Pending, model.Completed} {
		if got := mustLoad(t, st, c); len(got) != 0 {
			t.Fatalf("expected empty %s, got %+v", c, got)
		}
	}
}

func TestStore_Load_Unreadable(t *testing.T) {
	dir := t.TempDir()
	pendingPath := filepath.Join(dir, "tasks.csv")
	// a directory where a file is expected cannot be read
	if err := os.Mkdir(pendingPath, 0755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	st := New(NewCSVBackend(pendingPath, filepath.Join(dir, "completed.csv")))

	if _, err := st.Load(model.Pending); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if _, err := st.Add(model.TaskInput{Title: "A", Category: "Work", Priority: "High"}); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable from Add, got %v", err)
	}
}

func TestStore_Load_MalformedFile(t *testing.T) {
	st, backend, _ := newCSVStore(t)
	if err := os.WriteFile(backend.PendingPath, []byte("name,when\nA,today\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := st.Load(model.Pending); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestStore_ConcurrentAdds(t *testing.T) {
	st, _, _ := newCSVStore(t, WithLocker(newTestLock(t)))

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := st.Add(model.TaskInput{Title: fmt.Sprintf("t%02d", i), Category: "Work", Priority: "Low"})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if got := mustLoad(t, st, model.Pending); len(got) != n {
		t.Fatalf("expected %d tasks, got %d", n, len(got))
	}
}

// countingLock checks that the store never takes the lock twice.
type countingLock struct {
	mu   sync.Mutex
	held bool
	t    *testing.T
}

func newTestLock(t *testing.T) *countingLock { return &countingLock{t: t} }

func (l *countingLock) Lock() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		l.t.Errorf("lock taken while held")
	}
	l.held = true
	return nil
}

func (l *countingLock) Unlock() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = false
	return nil
}

type refusingLock struct{}

func (refusingLock) Lock() error   { return errors.New("locked by someone else") }
func (refusingLock) Unlock() error { return nil }

func TestStore_LockFailureIsStorageUnavailable(t *testing.T) {
	dir := t.TempDir()
	st := New(NewCSVBackend(filepath.Join(dir, "p.csv"), filepath.Join(dir, "c.csv")), WithLocker(refusingLock{}))
	if _, err := st.Load(model.Pending); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestError_Message(t *testing.T) {
	err := notFound("complete", "Pay rent", model.Pending)
	if got := err.Error(); got != `complete: not found "Pay rent": not in pending collection` {
		t.Fatalf("unexpected message %q", got)
	}
	fe := &model.FieldError{Field: "category", Value: "Bogus", Reason: "must be one of Work, Personal, School, Others"}
	if got := invalid("add", fe).Error(); got != "add: "+fe.Error() {
		t.Fatalf("unexpected message %q", got)
	}
}
