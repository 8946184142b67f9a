/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/nakachan-ing/tsk-cli/internal/model"
	"github.com/nakachan-ing/tsk-cli/internal/store"
	"github.com/nakachan-ing/tsk-cli/internal/util"
	"github.com/spf13/cobra"
)

var taskPageSize int
var taskListCompleted bool
var taskSearch string
var taskFromDate string
var taskToDate string
var filterCategory string
var filterPriority string

func priorityColored(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return text.FgHiRed.Sprintf("%s", p)
	case model.PriorityMedium:
		return text.FgHiYellow.Sprintf("%s", p)
	case model.PriorityLow:
		return text.FgHiBlue.Sprintf("%s", p)
	}
	return string(p)
}

func statusColored(s model.Status) string {
	if s == model.StatusDone {
		return text.FgHiGreen.Sprintf("%s", s)
	}
	return text.FgHiMagenta.Sprintf("%s", s)
}

// renderTasks prints tasks as pages of pageSize rows, waiting for Enter
// between pages. pageSize <= 0 prints everything at once.
func renderTasks(out io.Writer, in io.Reader, heading string, tasks []model.Task, pageSize int) {
	fmt.Fprintln(out, strings.Repeat("=", 30))
	fmt.Fprintf(out, "%s: %v tasks shown\n", heading, len(tasks))
	fmt.Fprintln(out, strings.Repeat("=", 30))

	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks to display.")
		return
	}
	if pageSize <= 0 {
		pageSize = len(tasks)
	}

	reader := bufio.NewReader(in)
	for start := 0; start < len(tasks); start += pageSize {
		end := min(start+pageSize, len(tasks))

		t := table.NewWriter()
		t.SetOutputMirror(out)
		t.SetStyle(table.StyleDouble)
		t.Style().Options.SeparateRows = false

		t.AppendHeader(table.Row{
			text.FgGreen.Sprintf("#"), text.FgGreen.Sprintf("%s", text.Bold.Sprintf("Title")),
			text.FgGreen.Sprintf("Category"),
			text.FgGreen.Sprintf("Priority"),
			text.FgGreen.Sprintf("Deadline"),
			text.FgGreen.Sprintf("Status"),
		})
		for i, task := range tasks[start:end] {
			t.AppendRow(table.Row{
				start + i + 1,
				task.Title,
				task.Category,
				priorityColored(task.Priority),
				task.Deadline,
				statusColored(task.Status),
			})
		}
		t.Render()

		if end >= len(tasks) {
			break
		}

		fmt.Fprint(out, "\nPress Enter for the next page (q to quit): ")
		input, err := reader.ReadString('\n')
		if err != nil || strings.TrimSpace(input) == "q" {
			break
		}
	}
}

// listPageSize prefers --limit, then list.page_size from the config.
func listPageSize(cmd *cobra.Command, config *model.Config) int {
	if cmd.Flags().Changed("limit") || config.List.PageSize == 0 {
		return taskPageSize
	}
	return config.List.PageSize
}

func listCollection() model.Collection {
	if taskListCompleted {
		return model.Completed
	}
	return model.Pending
}

func collectionHeading(c model.Collection) string {
	if c == model.Completed {
		return "Completed tasks"
	}
	return "Pending tasks"
}

var listTaskCmd = &cobra.Command{
	Use:     "list",
	Short:   "List tasks",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		st, config, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		c := listCollection()
		tasks, err := st.Load(c)
		if err != nil {
			return err
		}
		tasks = util.FullTextSearch(tasks, taskSearch)
		tasks, err = util.FilterByDeadline(tasks, taskFromDate, taskToDate)
		if err != nil {
			return err
		}

		renderTasks(os.Stdout, os.Stdin, collectionHeading(c), tasks, listPageSize(cmd, config))
		return nil
	},
}

var filterTaskCmd = &cobra.Command{
	Use:   "filter",
	Short: "List pending tasks matching a category and/or priority",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := store.ParseFilter(filterCategory, filterPriority)
		if err != nil {
			return err
		}

		st, config, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		tasks, err := st.Filter(f)
		if err != nil {
			return err
		}
		renderTasks(os.Stdout, os.Stdin, "Filtered tasks", tasks, listPageSize(cmd, config))
		return nil
	},
}

var sortTaskCmd = &cobra.Command{
	Use:       "sort [key]",
	Short:     "List tasks ordered by title, category, priority, deadline or status",
	Args:      cobra.ExactArgs(1),
	ValidArgs: sortKeyNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := store.ParseSortKey(args[0])
		if err != nil {
			return err
		}

		st, config, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		c := listCollection()
		tasks, err := st.Sort(c, key)
		if err != nil {
			return err
		}
		renderTasks(os.Stdout, os.Stdin, fmt.Sprintf("%s by %s", collectionHeading(c), key), tasks, listPageSize(cmd, config))
		return nil
	},
}

func sortKeyNames() []string {
	names := make([]string, len(store.SortKeys))
	for i, k := range store.SortKeys {
		names[i] = string(k)
	}
	return names
}

func init() {
	taskCmd.AddCommand(listTaskCmd)
	taskCmd.AddCommand(filterTaskCmd)
	taskCmd.AddCommand(sortTaskCmd)

	for _, c := range []*cobra.Command{listTaskCmd, filterTaskCmd, sortTaskCmd} {
		c.Flags().IntVar(&taskPageSize, "limit", 20, "Set the number of tasks to display per page (-1 for all)")
	}
	listTaskCmd.Flags().BoolVar(&taskListCompleted, "completed", false, "Show completed tasks")
	listTaskCmd.Flags().StringVarP(&taskSearch, "search", "s", "", "Only titles containing this text")
	listTaskCmd.Flags().StringVar(&taskFromDate, "from", "", "Deadline on or after this date (YYYY-MM-DD)")
	listTaskCmd.Flags().StringVar(&taskToDate, "to", "", "Deadline on or before this date (YYYY-MM-DD)")

	filterTaskCmd.Flags().StringVarP(&filterCategory, "category", "c", "", "Work, Personal, School, Others or all")
	filterTaskCmd.Flags().StringVarP(&filterPriority, "priority", "p", "", "High, Medium, Low or all")

	sortTaskCmd.Flags().BoolVar(&taskListCompleted, "completed", false, "Sort completed tasks")
}
