/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/nakachan-ing/tsk-cli/internal/model"
	"github.com/nakachan-ing/tsk-cli/internal/store"
	"github.com/spf13/cobra"
)

var taskPlain bool

// findTask looks the title up in pending first, then completed.
func findTask(st *store.Store, title string) (model.Task, model.Collection, bool, error) {
	title = strings.TrimSpace(title)
	for _, c := range []model.Collection{model.Pending, model.Completed} {
		tasks, err := st.Load(c)
		if err != nil {
			return model.Task{}, "", false, err
		}
		for _, t := range tasks {
			if t.Title == title {
				return t, c, true, nil
			}
		}
	}
	return model.Task{}, "", false, nil
}

// taskCard renders a task as markdown for glamour.
func taskCard(t model.Task, c model.Collection, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", t.Title)
	fmt.Fprintf(&b, "| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Category | %s |\n", t.Category)
	fmt.Fprintf(&b, "| Priority | %s |\n", t.Priority)
	fmt.Fprintf(&b, "| Deadline | %s |\n", t.Deadline)
	fmt.Fprintf(&b, "| Status | %s |\n", t.Status)
	fmt.Fprintf(&b, "| Collection | %s |\n", c)

	if t.Deadline.IsSet() && c == model.Pending {
		// deadlines carry no zone; read them as wall time where now is
		d := t.Deadline.Time()
		due := time.Date(d.Year(), d.Month(), d.Day(), d.Hour(), d.Minute(), 0, 0, now.Location())
		left := due.Sub(now).Round(time.Minute)
		if left < 0 {
			fmt.Fprintf(&b, "\n> **Overdue** by %s\n", -left)
		} else {
			fmt.Fprintf(&b, "\n> Due in %s\n", left)
		}
	}
	return b.String()
}

var showTaskCmd = &cobra.Command{
	Use:     "show [title]",
	Short:   "Show a task",
	Args:    cobra.ExactArgs(1),
	Aliases: []string{"s"},
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		task, c, ok, err := findTask(st, args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("task %q not found", args[0])
		}

		titleStyle := color.New(color.FgCyan, color.Bold).SprintFunc()
		fieldStyle := color.New(color.FgHiGreen).SprintFunc()

		fmt.Printf("%v\n", titleStyle(task.Title))
		fmt.Println(strings.Repeat("-", 50))
		fmt.Printf("Category: %v\n", fieldStyle(task.Category))
		fmt.Printf("Priority: %v\n", fieldStyle(task.Priority))
		fmt.Printf("Deadline: %v\n", fieldStyle(task.Deadline))
		fmt.Printf("Status: %v\n", fieldStyle(task.Status))

		if !taskPlain {
			rendered, err := glamour.Render(taskCard(task, c, time.Now()), "dark")
			if err != nil {
				log.Printf("⚠️ Failed to render markdown content: %v", err)
			} else {
				fmt.Println(rendered)
			}
		}
		return nil
	},
}

func init() {
	taskCmd.AddCommand(showTaskCmd)
	showTaskCmd.Flags().BoolVar(&taskPlain, "plain", false, "Skip the rendered card")
}
