package checkpoint

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch reports the path of every checkpoint or final-document file written
// under dir until the context ends. It is used for live progress following;
// temp files from in-flight atomic writes are filtered out.
func Watch(ctx context.Context, dir string, fn func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if !isArtifact(ev.Name) {
				continue
			}
			fn(ev.Name)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return werr
		}
	}
}

// isArtifact reports whether a path is a stage checkpoint or the final
// document, as opposed to a temp file or the debug log.
func isArtifact(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".tmp-") {
		return false
	}
	return strings.HasSuffix(name, ".json") || name == FinalFileName
}
