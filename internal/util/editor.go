package util

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/nakachan-ing/tsk-cli/internal/model"
)

// OpenEditor runs the configured editor on filePath; $EDITOR wins over the
// config file.
func OpenEditor(filePath string, config model.Config) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = config.Editor
	}
	if editor == "" {
		editor = "vi"
	}
	c := exec.Command(editor, filePath)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("failed to open editor (%s): %w", filePath, err)
	}
	return nil
}
