/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/nakachan-ing/tsk-cli/internal/model"
	"github.com/nakachan-ing/tsk-cli/internal/store"
	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "tsk",
	Short:         "Track pending and completed tasks",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return store.LoadEnv()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", explain(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log store activity to stderr")
}

func storeLogger() *log.Logger {
	if !verbose {
		return nil
	}
	return log.New(os.Stderr, "", log.LstdFlags)
}

// openStore loads the config and returns an initialized store. Callers must
// Close it.
func openStore() (*store.Store, *model.Config, error) {
	config, err := store.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("error loading config: %w", err)
	}
	st, err := store.Open(*config, storeLogger())
	if err != nil {
		return nil, nil, err
	}
	if err := st.Initialize(); err != nil {
		st.Close()
		return nil, nil, err
	}
	return st, config, nil
}

// explain turns store failures into messages for the terminal.
func explain(err error) string {
	var fieldErr *model.FieldError
	var storeErr *store.Error

	switch {
	case errors.As(err, &fieldErr):
		return fmt.Sprintf("Invalid %s %q: %s.", fieldErr.Field, fieldErr.Value, fieldErr.Reason)
	case errors.Is(err, store.ErrDuplicateTitle):
		if errors.As(err, &storeErr) {
			return fmt.Sprintf("A task titled %q already exists. Please use a unique title.", storeErr.Title)
		}
		return "A task with this title already exists. Please use a unique title."
	case errors.Is(err, store.ErrNotFound):
		if errors.As(err, &storeErr) {
			return fmt.Sprintf("Task %q not found (%v).", storeErr.Title, storeErr.Err)
		}
		return "Task not found."
	case errors.Is(err, store.ErrStorageUnavailable):
		return fmt.Sprintf("Task storage is unavailable: %v", err)
	}
	return err.Error()
}
