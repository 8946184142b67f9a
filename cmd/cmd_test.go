package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/nakachan-ing/tsk-cli/internal/model"
	"github.com/nakachan-ing/tsk-cli/internal/store"
)

func TestExplain(t *testing.T) {
	dir := t.TempDir()
	st := store.New(store.NewCSVBackend(dir+"/p.csv", dir+"/c.csv"))

	_, err := st.Add(model.TaskInput{Title: "X", Category: "Bogus", Priority: "High"})
	if got := explain(err); !strings.HasPrefix(got, `Invalid category "Bogus"`) {
		t.Fatalf("explain(invalid) = %q", got)
	}

	if _, err := st.Add(model.TaskInput{Title: "X", Category: "Work", Priority: "High"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_, err = st.Add(model.TaskInput{Title: "X", Category: "Work", Priority: "High"})
	if got := explain(err); !strings.Contains(got, `"X" already exists`) {
		t.Fatalf("explain(duplicate) = %q", got)
	}

	_, err = st.Complete("Y")
	if got := explain(err); !strings.HasPrefix(got, `Task "Y" not found`) {
		t.Fatalf("explain(not found) = %q", got)
	}

	plain := errors.New("boom")
	if got := explain(fmt.Errorf("wrapped: %w", plain)); got != "wrapped: boom" {
		t.Fatalf("explain(other) = %q", got)
	}
}

func TestRenderTasks_Pages(t *testing.T) {
	var tasks []model.Task
	for i := 0; i < 5; i++ {
		task, err := model.TaskInput{Title: fmt.Sprintf("task-%d", i), Category: "Work", Priority: "Low"}.Validate()
		if err != nil {
			t.Fatalf("Validate: %v", err)
		}
		tasks = append(tasks, task)
	}

	var out bytes.Buffer
	renderTasks(&out, strings.NewReader("\nq\n"), "Pending tasks", tasks, 2)
	s := out.String()
	if !strings.Contains(s, "Pending tasks: 5 tasks shown") {
		t.Fatalf("missing heading:\n%s", s)
	}
	// Enter shows page two, q stops before page three
	if !strings.Contains(s, "task-3") || strings.Contains(s, "task-4") {
		t.Fatalf("unexpected paging:\n%s", s)
	}

	out.Reset()
	renderTasks(&out, strings.NewReader(""), "Pending tasks", nil, 2)
	if !strings.Contains(out.String(), "No tasks to display.") {
		t.Fatalf("empty list output:\n%s", out.String())
	}
}

func TestTaskCard(t *testing.T) {
	task, err := model.TaskInput{Title: "Pay rent", Category: "Personal", Priority: "High", Deadline: "2025-03-01 09:00"}.Validate()
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	card := taskCard(task, model.Pending, now)
	if !strings.Contains(card, "# Pay rent") || !strings.Contains(card, "**Overdue** by 1h0m0s") {
		t.Fatalf("unexpected card:\n%s", card)
	}
	if strings.Contains(taskCard(task, model.Completed, now), "Overdue") {
		t.Fatalf("completed tasks are never overdue")
	}
}
