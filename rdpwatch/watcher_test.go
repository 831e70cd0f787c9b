package rdpwatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestTranslateFsnotifyEvt(t *testing.T) {
	file := filepath.Join("settings", "settings.toml")

	type test struct {
		name   string
		evt    fsnotify.Event
		ok     bool
		change SettingsChangeOp
	}

	var tests = []test{
		{"write", fsnotify.Event{Name: file, Op: fsnotify.Write}, true, SettingsWritten},
		{"create", fsnotify.Event{Name: file, Op: fsnotify.Create}, true, SettingsWritten},
		{"remove", fsnotify.Event{Name: file, Op: fsnotify.Remove}, true, SettingsRemoved},
		{"rename", fsnotify.Event{Name: file, Op: fsnotify.Rename}, true, SettingsRemoved},
		{"chmod", fsnotify.Event{Name: file, Op: fsnotify.Chmod}, false, ""},
		{"other file", fsnotify.Event{Name: filepath.Join("settings", "x"), Op: fsnotify.Write}, false, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			change, ok := translateFsnotifyEvt(test.evt, file)
			if ok != test.ok {
				t.Fatalf("got ok %v, expected %v", ok, test.ok)
			}
			if ok && change.Op != test.change {
				t.Fatalf("got op %q, expected %q", change.Op, test.change)
			}
		})
	}
}

func TestWatchSettings(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	file := filepath.Join(t.TempDir(), "settings.toml")

	w, err := WatchSettings(ctx, file, NopJournaler)
	if err != nil {
		t.Fatal("failed to watch:", err)
	}

	if err := os.WriteFile(file, []byte("exit_remote_clients = true\n"), 0600); err != nil {
		t.Fatal("failed to write settings:", err)
	}
	expectChange(t, w, SettingsWritten)

	if err := os.Remove(file); err != nil {
		t.Fatal("failed to remove settings:", err)
	}
	expectChange(t, w, SettingsRemoved)
}

// expectChange waits for a change with the given op, skipping others.
func expectChange(t *testing.T, w *SettingsWatcher, op SettingsChangeOp) {
	t.Helper()

	timeout := time.After(5 * time.Second)

	for {
		select {
		case change := <-w.Changes:
			if change.Op == op {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s change", op)
		}
	}
}
