package fixture

import (
	"context"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/mogaika/skelanim/utils"
)

// Watch reloads the fixture at path whenever it is written or replaced and
// passes the result to onLoad. The directory is watched so editors that
// save through a rename keep working. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, l *log.Logger, onLoad func(*Fixture)) error {
	l = utils.LoggerOrDefault(l)
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrapf(err, "Can't create watcher")
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "Can't resolve %q", path)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrapf(err, "Can't watch %q", path)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(e.Name) != abs || e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			f, err := Load(abs)
			if err != nil {
				l.Warn("Fixture reload failed", "path", path, "err", err)
				continue
			}
			l.Info("Fixture reloaded", "path", path, "sequences", len(f.Sequences))
			onLoad(f)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.Error("Watcher error", "err", err)
		}
	}
}
