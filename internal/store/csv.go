package store

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/nakachan-ing/tsk-cli/internal/model"
)

// CSVBackend keeps each collection in its own CSV file with the header
// title,category,priority,deadline,status.
type CSVBackend struct {
	PendingPath   string
	CompletedPath string
}

func NewCSVBackend(pendingPath, completedPath string) *CSVBackend {
	return &CSVBackend{PendingPath: pendingPath, CompletedPath: completedPath}
}

func (b *CSVBackend) path(c model.Collection) string {
	if c == model.Completed {
		return b.CompletedPath
	}
	return b.PendingPath
}

// Init writes a header-only file for each collection that does not exist yet.
func (b *CSVBackend) Init() error {
	for _, c := range []model.Collection{model.Pending, model.Completed} {
		path := b.path(c)
		exists, err := fileExists(path)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		data, err := encodeCSV(nil)
		if err != nil {
			return err
		}
		if err := writeFileAtomic(path, data, 0644); err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
	}
	return nil
}

func (b *CSVBackend) Load(c model.Collection) ([]model.Task, error) {
	path := b.path(c)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []model.Task{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	tasks, err := decodeCSV(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return tasks, nil
}

func (b *CSVBackend) Save(c model.Collection, tasks []model.Task) error {
	data, err := encodeCSV(tasks)
	if err != nil {
		return err
	}
	return writeFileAtomic(b.path(c), data, 0644)
}

func encodeCSV(tasks []model.Task) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(model.Columns); err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if err := w.Write(t.Row()); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to encode CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeCSV(data []byte) ([]model.Task, error) {
	tasks := []model.Task{}
	if len(bytes.TrimSpace(data)) == 0 {
		return tasks, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(model.Columns)

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if !slices.Equal(header, model.Columns) {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		t, err := model.ParseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
