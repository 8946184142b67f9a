package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nakachan-ing/tsk-cli/internal/model"
	"gopkg.in/yaml.v3"
)

func TestLock_AcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".tsk.lock")
	l := NewLock(path, time.Second, time.Minute)

	if err := l.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	holder, err := ReadLockFile(path)
	if err != nil {
		t.Fatalf("ReadLockFile: %v", err)
	}
	if holder.Pid != os.Getpid() {
		t.Fatalf("lock holder pid = %d", holder.Pid)
	}
	if err := l.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("lock file not removed: %v", err)
	}
	// unlocking twice is harmless
	if err := l.Unlock(); err != nil {
		t.Fatalf("second Unlock: %v", err)
	}
}

func TestLock_TimesOutWhileHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".tsk.lock")
	holder := NewLock(path, time.Second, time.Minute)
	if err := holder.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer holder.Unlock()

	waiter := NewLock(path, 150*time.Millisecond, time.Minute)
	start := time.Now()
	err := waiter.Lock()
	if err == nil {
		t.Fatalf("expected lock contention error")
	}
	if !strings.Contains(err.Error(), "locked by") {
		t.Fatalf("error should name the holder: %v", err)
	}
	if time.Since(start) < 150*time.Millisecond {
		t.Fatalf("gave up before the timeout")
	}
}

func TestLock_WaitsForRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".tsk.lock")
	holder := NewLock(path, time.Second, time.Minute)
	if err := holder.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	go func() {
		time.Sleep(100 * time.Millisecond)
		holder.Unlock()
	}()

	waiter := NewLock(path, 2*time.Second, time.Minute)
	if err := waiter.Lock(); err != nil {
		t.Fatalf("waiter Lock: %v", err)
	}
	waiter.Unlock()
}

func TestLock_TakesOverStaleLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".tsk.lock")
	stale := model.LockFile{
		ID:        "old",
		User:      "someone",
		Pid:       999999,
		TimeStamp: time.Now().Add(-time.Hour).Format(time.RFC3339),
	}
	data, err := yaml.Marshal(&stale)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	l := NewLock(path, 100*time.Millisecond, time.Minute)
	if err := l.Lock(); err != nil {
		t.Fatalf("stale lock not taken over: %v", err)
	}
	defer l.Unlock()
	holder, err := ReadLockFile(path)
	if err != nil || holder.Pid != os.Getpid() {
		t.Fatalf("lock not rewritten: %+v, %v", holder, err)
	}
}

func TestCreateLockFile_Exclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".tsk.lock")
	first, err := CreateLockFile(path)
	if err != nil {
		t.Fatalf("CreateLockFile: %v", err)
	}
	if _, err := CreateLockFile(path); !os.IsExist(err) {
		t.Fatalf("expected IsExist error, got %v", err)
	}
	if holder, err := ReadLockFile(path); err != nil || holder.ID != first.ID || first.ID == "" {
		t.Fatalf("lock file = %+v, %v; want id %q", holder, err, first.ID)
	}
}

func writeLockFile(t *testing.T, path string, lf model.LockFile) {
	t.Helper()
	data, err := yaml.Marshal(&lf)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLock_UnlockLeavesForeignLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".tsk.lock")
	l := NewLock(path, time.Second, time.Minute)
	if err := l.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}

	// our lock went stale and another process took it over
	other := model.LockFile{ID: "other", User: "someone", Pid: 4242, TimeStamp: time.Now().Format(time.RFC3339)}
	writeLockFile(t, path, other)

	if err := l.Unlock(); err == nil || !strings.Contains(err.Error(), "taken over") {
		t.Fatalf("expected takeover error, got %v", err)
	}
	if holder, err := ReadLockFile(path); err != nil || holder.ID != "other" {
		t.Fatalf("foreign lock removed: %+v, %v", holder, err)
	}
}

func TestLock_StaleTakeoverKeepsReplacementLock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".tsk.lock")
	l := NewLock(path, time.Second, time.Minute)

	stale := model.LockFile{ID: "old", User: "someone", Pid: 999999, TimeStamp: time.Now().Add(-time.Hour).Format(time.RFC3339)}
	fresh := model.LockFile{ID: "new", User: "someone", Pid: 4242, TimeStamp: time.Now().Format(time.RFC3339)}

	// another waiter replaced the stale lock between our read and our takeover
	writeLockFile(t, path, fresh)
	if err := l.breakStale(stale); err != nil {
		t.Fatalf("breakStale: %v", err)
	}
	if holder, err := ReadLockFile(path); err != nil || holder.ID != "new" {
		t.Fatalf("replacement lock lost: %+v, %v", holder, err)
	}

	// the lock judged stale is the one on disk: it goes
	writeLockFile(t, path, stale)
	if err := l.breakStale(stale); err != nil {
		t.Fatalf("breakStale: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("stale lock not removed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("moved-aside lock files left behind: %d", len(entries))
	}
}
