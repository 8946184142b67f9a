/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nakachan-ing/tsk-cli/internal/model"
	"github.com/nakachan-ing/tsk-cli/internal/util"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var taskCategory string
var taskPriority string
var taskDeadline string
var taskDate string
var taskTime string
var taskNoDeadline bool
var taskInteractive bool
var taskNewTitle string
var editCategory string
var editPriority string
var taskFromCompleted bool

// defaultDeadlineTime is used when only a date is given.
const defaultDeadlineTime = "23:59"

// deadlineFromFlags combines --deadline or --date/--time into one value.
// ok is false when no deadline flag was given.
func deadlineFromFlags(cmd *cobra.Command) (value string, ok bool, err error) {
	flags := cmd.Flags()
	switch {
	case taskNoDeadline:
		return model.NoDeadline, true, nil
	case flags.Changed("deadline"):
		return taskDeadline, true, nil
	case flags.Changed("date"):
		t := taskTime
		if t == "" {
			t = defaultDeadlineTime
		}
		return strings.TrimSpace(taskDate) + " " + strings.TrimSpace(t), true, nil
	case flags.Changed("time"):
		return "", false, errors.New("--time needs --date")
	}
	return "", false, nil
}

// taskCmd represents the task command
var taskCmd = &cobra.Command{
	Use:     "task",
	Short:   "Manage tasks",
	Aliases: []string{"t"},
}

var newTaskCmd = &cobra.Command{
	Use:     "new [title]",
	Short:   "Add a new pending task",
	Args:    cobra.MaximumNArgs(1),
	Aliases: []string{"n", "add"},
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		var in model.TaskInput
		if taskInteractive || len(args) == 0 {
			initial := model.TaskInput{Category: taskCategory, Priority: taskPriority}
			if len(args) == 1 {
				initial.Title = args[0]
			}
			submitted, ok, err := runTaskForm(initial)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Cancelled.")
				return nil
			}
			in = submitted
		} else {
			deadline, _, err := deadlineFromFlags(cmd)
			if err != nil {
				return err
			}
			in = model.TaskInput{Title: args[0], Category: taskCategory, Priority: taskPriority, Deadline: deadline}
		}

		task, err := st.Add(in)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Task %q added (%s, %s, due %s).\n", task.Title, task.Category, task.Priority, task.Deadline)
		return nil
	},
}

var editTaskCmd = &cobra.Command{
	Use:     "edit [title]",
	Short:   "Modify a pending task",
	Long:    "Modify a pending task. Without field flags the task opens in your editor as YAML.",
	Args:    cobra.ExactArgs(1),
	Aliases: []string{"e", "modify"},
	RunE: func(cmd *cobra.Command, args []string) error {
		title := args[0]

		st, config, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		var upd model.TaskUpdate
		flags := cmd.Flags()
		if flags.Changed("title") {
			upd.Title = &taskNewTitle
		}
		if flags.Changed("category") {
			upd.Category = &editCategory
		}
		if flags.Changed("priority") {
			upd.Priority = &editPriority
		}
		deadline, ok, err := deadlineFromFlags(cmd)
		if err != nil {
			return err
		}
		if ok {
			upd.Deadline = &deadline
		}

		if upd.Empty() {
			pending, err := st.Load(model.Pending)
			if err != nil {
				return err
			}
			var current *model.Task
			for i := range pending {
				if pending[i].Title == strings.TrimSpace(title) {
					current = &pending[i]
					break
				}
			}
			if current == nil {
				// let the store report it
				_, err = st.Modify(title, upd)
				return err
			}
			upd, err = editInEditor(*current, *config)
			if err != nil {
				return err
			}
		}

		task, err := st.Modify(title, upd)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Task %q updated successfully!\n", task.Title)
		return nil
	},
}

// editBuffer is what the user sees in the editor.
type editBuffer struct {
	Title    string `yaml:"title"`
	Category string `yaml:"category"` // Work, Personal, School, Others
	Priority string `yaml:"priority"` // High, Medium, Low
	Deadline string `yaml:"deadline"` // YYYY-MM-DD HH:MM or None
}

func editInEditor(task model.Task, config model.Config) (model.TaskUpdate, error) {
	buf := editBuffer{
		Title:    task.Title,
		Category: string(task.Category),
		Priority: string(task.Priority),
		Deadline: task.Deadline.String(),
	}
	data, err := yaml.Marshal(&buf)
	if err != nil {
		return model.TaskUpdate{}, fmt.Errorf("failed to convert to YAML: %w", err)
	}

	dir, err := os.MkdirTemp("", "tsk-edit-*")
	if err != nil {
		return model.TaskUpdate{}, err
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "task.yaml")
	if err := os.WriteFile(path, data, 0600); err != nil {
		return model.TaskUpdate{}, fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := util.OpenEditor(path, config); err != nil {
		return model.TaskUpdate{}, err
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return model.TaskUpdate{}, fmt.Errorf("failed to read edited task: %w", err)
	}
	var out editBuffer
	if err := yaml.Unmarshal(edited, &out); err != nil {
		return model.TaskUpdate{}, fmt.Errorf("failed to parse edited task: %w", err)
	}
	return model.TaskUpdate{
		Title:    &out.Title,
		Category: &out.Category,
		Priority: &out.Priority,
		Deadline: &out.Deadline,
	}, nil
}

var doneTaskCmd = &cobra.Command{
	Use:     "done [title]",
	Short:   "Mark a pending task as complete",
	Args:    cobra.ExactArgs(1),
	Aliases: []string{"complete", "d"},
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		task, err := st.Complete(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("✅ Task %q marked as complete!\n", task.Title)
		return nil
	},
}

var reopenTaskCmd = &cobra.Command{
	Use:     "reopen [title]",
	Short:   "Mark a completed task as pending again",
	Args:    cobra.ExactArgs(1),
	Aliases: []string{"undone"},
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		task, err := st.Reopen(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("✅ Task %q marked as pending!\n", task.Title)
		return nil
	},
}

var deleteTaskCmd = &cobra.Command{
	Use:     "remove [title]",
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	Aliases: []string{"rm", "delete"},
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		from := model.Pending
		if taskFromCompleted {
			from = model.Completed
		}
		task, err := st.Delete(args[0], from)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Task %q deleted successfully!\n", task.Title)
		return nil
	},
}

func addDeadlineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&taskDeadline, "deadline", "", "Deadline as \"YYYY-MM-DD HH:MM\" or None")
	cmd.Flags().StringVar(&taskDate, "date", "", "Deadline date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&taskTime, "time", "", "Deadline time (HH:MM, default "+defaultDeadlineTime+")")
	cmd.Flags().BoolVar(&taskNoDeadline, "no-deadline", false, "Clear the deadline")
	cmd.MarkFlagsMutuallyExclusive("deadline", "date", "no-deadline")
	cmd.MarkFlagsMutuallyExclusive("deadline", "time", "no-deadline")
}

func init() {
	taskCmd.AddCommand(newTaskCmd)
	taskCmd.AddCommand(editTaskCmd)
	taskCmd.AddCommand(doneTaskCmd)
	taskCmd.AddCommand(reopenTaskCmd)
	taskCmd.AddCommand(deleteTaskCmd)
	rootCmd.AddCommand(taskCmd)

	newTaskCmd.Flags().StringVarP(&taskCategory, "category", "c", string(model.CategoryWork), "Work, Personal, School or Others")
	newTaskCmd.Flags().StringVarP(&taskPriority, "priority", "p", string(model.PriorityHigh), "High, Medium or Low")
	newTaskCmd.Flags().BoolVarP(&taskInteractive, "interactive", "i", false, "Fill in the task in a form")
	addDeadlineFlags(newTaskCmd)

	editTaskCmd.Flags().StringVar(&taskNewTitle, "title", "", "New title")
	editTaskCmd.Flags().StringVarP(&editCategory, "category", "c", "", "Work, Personal, School or Others")
	editTaskCmd.Flags().StringVarP(&editPriority, "priority", "p", "", "High, Medium or Low")
	addDeadlineFlags(editTaskCmd)

	deleteTaskCmd.Flags().BoolVar(&taskFromCompleted, "completed", false, "Delete from the completed tasks")
}
