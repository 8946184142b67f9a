package util

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/nakachan-ing/tsk-cli/internal/model"
	"gopkg.in/yaml.v3"
)

// Lock is a lock file shared by every tsk process using the same data
// directory. The file holds who took it so a waiting process can report it.
type Lock struct {
	path    string
	timeout time.Duration
	stale   time.Duration
	retry   time.Duration
	owner   string // ID of the lock file we wrote, "" when not held
}

func NewLock(path string, timeout, stale time.Duration) *Lock {
	return &Lock{path: path, timeout: timeout, stale: stale, retry: 50 * time.Millisecond}
}

func (l *Lock) Path() string { return l.path }

// Lock waits up to the timeout for the lock file. A lock older than the
// stale age is assumed abandoned and taken over.
func (l *Lock) Lock() error {
	deadline := time.Now().Add(l.timeout)
	for {
		mine, err := CreateLockFile(l.path)
		if err == nil {
			l.owner = mine.ID
			return nil
		}
		if !os.IsExist(err) {
			return err
		}

		holder, rerr := ReadLockFile(l.path)
		if l.isStale(holder, rerr) {
			if err := l.breakStale(holder); err != nil {
				return err
			}
			continue
		}

		if time.Now().After(deadline) {
			if rerr != nil {
				return fmt.Errorf("data directory is locked (%s)", l.path)
			}
			return fmt.Errorf("data directory is locked by %s (pid %d) since %s", holder.User, holder.Pid, holder.TimeStamp)
		}
		time.Sleep(l.retry)
	}
}

// Unlock removes the lock file if it is still ours. A lock taken over by
// another process after ours went stale is left alone.
func (l *Lock) Unlock() error {
	if l.owner == "" {
		return nil
	}
	owner := l.owner
	l.owner = ""

	holder, err := ReadLockFile(l.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if holder.ID != owner {
		return fmt.Errorf("lock file %s was taken over by %s (pid %d), leaving it in place", l.path, holder.User, holder.Pid)
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

// breakStale moves the lock file aside under a unique name, so only one
// waiter can claim a given stale lock. If what was moved is not the lock
// judged stale, another waiter already replaced it and it is put back.
func (l *Lock) breakStale(seen model.LockFile) error {
	aside := l.path + ".stale-" + uuid.NewString()
	if err := os.Rename(l.path, aside); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to move stale lock file: %w", err)
	}
	defer os.Remove(aside)

	moved, err := ReadLockFile(aside)
	if err != nil || moved.ID == seen.ID {
		return nil
	}
	if err := os.Link(aside, l.path); err != nil && !os.IsExist(err) {
		return fmt.Errorf("failed to restore lock file: %w", err)
	}
	return nil
}

func (l *Lock) isStale(holder model.LockFile, readErr error) bool {
	if l.stale <= 0 {
		return false
	}
	if readErr != nil {
		// half-written lock: fall back to the file age
		info, err := os.Stat(l.path)
		return err == nil && time.Since(info.ModTime()) > l.stale
	}
	taken, err := time.Parse(time.RFC3339, holder.TimeStamp)
	if err != nil {
		return false
	}
	return time.Since(taken) > l.stale
}

// CreateLockFile creates lockFileName exclusively and returns what it wrote.
// It fails with an os.IsExist error when another process holds it.
func CreateLockFile(lockFileName string) (model.LockFile, error) {
	t := time.Now()
	user := os.Getenv("USER")
	if user == "" {
		user = os.Getenv("USERNAME")
	}
	if user == "" {
		user = "unknown"
	}

	lockFile := model.LockFile{
		ID:        uuid.NewString(),
		User:      user,
		Pid:       os.Getpid(),
		TimeStamp: t.Format(time.RFC3339),
	}

	info, err := yaml.Marshal(&lockFile)
	if err != nil {
		return model.LockFile{}, fmt.Errorf("failed to marshal YAML: %w", err)
	}

	f, err := os.OpenFile(lockFileName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return model.LockFile{}, err
	}
	if _, err := f.Write(info); err != nil {
		f.Close()
		os.Remove(lockFileName)
		return model.LockFile{}, fmt.Errorf("failed to write lock file: %w", err)
	}
	return lockFile, f.Close()
}

func ReadLockFile(lockFileName string) (model.LockFile, error) {
	var lockFile model.LockFile
	data, err := os.ReadFile(lockFileName)
	if err != nil {
		return lockFile, err
	}
	if err := yaml.Unmarshal(data, &lockFile); err != nil {
		return lockFile, fmt.Errorf("failed to parse lock file: %w", err)
	}
	return lockFile, nil
}
