package rdpwatch

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// SettingsChange is sent by SettingsWatcher when the settings file changes.
type SettingsChange struct {
	Op   SettingsChangeOp
	File string
}

// SettingsChangeOp is the kind of change made to the settings file.
type SettingsChangeOp string

const (
	SettingsWritten SettingsChangeOp = "written"
	SettingsRemoved SettingsChangeOp = "removed"
)

// SettingsWatcher watches the settings file for changes. The directory of the
// file is watched rather than the file itself, since editors tend to replace
// files instead of writing to them.
type SettingsWatcher struct {
	Changes chan SettingsChange

	w    *fsnotify.Watcher
	j    Journaler
	file string
}

// TryWatchSettings attempts to watch the given settings file asynchronously,
// but it will log into the journaler if, for some reason, it fails to watch
// the file.
func TryWatchSettings(ctx context.Context, file string, j Journaler) *SettingsWatcher {
	w := newSettingsWatcher(file, j)

	go func() {
		if err := w.init(); err != nil {
			warnf(j, "watcher", "not watching settings because: %v", err)
			return
		}

		w.watch(ctx)
	}()

	return w
}

// WatchSettings watches the given settings file and sends changes to Changes.
// The watcher is stopped once the given context is canceled.
func WatchSettings(ctx context.Context, file string, j Journaler) (*SettingsWatcher, error) {
	w := newSettingsWatcher(file, j)
	if err := w.init(); err != nil {
		return nil, err
	}

	go w.watch(ctx)
	return w, nil
}

func newSettingsWatcher(file string, j Journaler) *SettingsWatcher {
	return &SettingsWatcher{
		Changes: make(chan SettingsChange),
		j:       j,
		file:    filepath.Clean(file),
	}
}

func (w *SettingsWatcher) init() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}

	if err := watcher.Add(filepath.Dir(w.file)); err != nil {
		watcher.Close()
		return errors.Wrap(err, "failed to watch settings dir")
	}

	w.w = watcher
	return nil
}

func (w *SettingsWatcher) watch(ctx context.Context) {
	defer w.w.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			warnf(w.j, "watcher", "fsnotify error: %v", err)

		case evt, ok := <-w.w.Events:
			if !ok {
				return
			}

			change, ok := translateFsnotifyEvt(evt, w.file)
			if !ok {
				continue
			}

			select {
			case w.Changes <- change:
			case <-ctx.Done():
				return
			}
		}
	}
}

// translateFsnotifyEvt translates an fsnotify event into a SettingsChange. It
// returns false if the event is not about file or is not interesting.
func translateFsnotifyEvt(evt fsnotify.Event, file string) (SettingsChange, bool) {
	if filepath.Clean(evt.Name) != file {
		return SettingsChange{}, false
	}

	switch {
	case evt.Op&(fsnotify.Write|fsnotify.Create) != 0:
		return SettingsChange{Op: SettingsWritten, File: file}, true
	case evt.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// A rename is reported on the old name only, so it is a remove as far
		// as this file is concerned.
		return SettingsChange{Op: SettingsRemoved, File: file}, true
	}

	return SettingsChange{}, false
}
