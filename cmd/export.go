/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/nakachan-ing/tsk-cli/internal/export"
	"github.com/spf13/cobra"
)

var exportFormat string
var exportOutput string

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all tasks as json, csv or pdf",
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(exportFormat)
		if !slices.Contains(export.Formats, format) {
			return fmt.Errorf("unknown format %q (want %s)", exportFormat, strings.Join(export.Formats, ", "))
		}

		st, config, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		data, err := export.NewExporter(st).Export(format)
		if err != nil {
			return err
		}

		if exportOutput == "-" {
			_, err := os.Stdout.Write(data)
			return err
		}

		out := exportOutput
		if out == "" {
			out = filepath.Join(config.ExportDir, fmt.Sprintf("tasks-%s.%s", time.Now().Format("20060102-150405"), format))
		}
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Println("✅ Exported tasks to", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "json, csv or pdf")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (- for stdout, default export_dir)")
}
