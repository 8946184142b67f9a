/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nakachan-ing/tsk-cli/internal/model"
	"github.com/nakachan-ing/tsk-cli/internal/store"
	"github.com/spf13/cobra"
)

var initForce bool

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config.yaml and empty task collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := store.GetConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}

		if _, err := os.Stat(configPath); os.IsNotExist(err) || initForce {
			if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			if err := store.SaveConfig(model.DefaultConfig()); err != nil {
				return err
			}
			fmt.Println("📄 Config file created at:", configPath)
		} else {
			fmt.Println("📄 Using existing config file:", configPath)
		}

		st, config, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		fmt.Println("✅ tsk initialized successfully!")
		fmt.Println("📂 Data directory:", config.DataDir, "("+config.Backend+")")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config.yaml with defaults")
}
