package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nakachan-ing/tsk-cli/internal/model"
)

// SQLiteBackend keeps both collections in one table; the status column
// decides membership, so a move is a single UPDATE.
type SQLiteBackend struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tasks (
  title    TEXT PRIMARY KEY,
  category TEXT NOT NULL,
  priority TEXT NOT NULL,
  deadline TEXT NOT NULL DEFAULT 'None',
  status   TEXT NOT NULL,
  position INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_status_position ON tasks(status, position);
`

// OpenSQLite opens (creating if needed) the database file at path.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	// one connection keeps ":memory:" databases alive and serialises writers
	db.SetMaxOpenConns(1)
	return &SQLiteBackend{db: db}, nil
}

func NewSQLiteBackend(db *sql.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

func (b *SQLiteBackend) Init() error {
	if _, err := b.db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Load(c model.Collection) ([]model.Task, error) {
	query := `SELECT title, category, priority, deadline, status FROM tasks
	 WHERE status = ? ORDER BY position, rowid`
	rows, err := b.db.Query(query, string(c.Status()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		row := make([]string, len(model.Columns))
		if err := rows.Scan(&row[0], &row[1], &row[2], &row[3], &row[4]); err != nil {
			return nil, err
		}
		t, err := model.ParseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %q: %w", row[0], err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (b *SQLiteBackend) Save(c model.Collection, tasks []model.Task) error {
	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tasks WHERE status = ?`, string(c.Status())); err != nil {
		return err
	}
	insert := `INSERT INTO tasks (title, category, priority, deadline, status, position)
	 VALUES (?, ?, ?, ?, ?, ?)`
	for i, t := range tasks {
		_, err := tx.Exec(insert, t.Title, string(t.Category), string(t.Priority),
			t.Deadline.String(), string(c.Status()), i)
		if err != nil {
			return fmt.Errorf("failed to insert %q: %w", t.Title, err)
		}
	}
	return tx.Commit()
}

// Move flips the status of one row and appends it to the end of to.
func (b *SQLiteBackend) Move(task model.Task, from, to model.Collection) error {
	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRow(`SELECT COALESCE(MAX(position) + 1, 0) FROM tasks WHERE status = ?`,
		string(to.Status())).Scan(&next)
	if err != nil {
		return err
	}

	res, err := tx.Exec(`UPDATE tasks SET status = ?, position = ? WHERE title = ? AND status = ?`,
		string(to.Status()), next, task.Title, string(from.Status()))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("expected to move 1 row, moved %d", n)
	}
	return tx.Commit()
}
