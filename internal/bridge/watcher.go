package bridge

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hbacelar8/tecarius/pkg/alpm"
)

// staleDebounce batches bursts of database writes into one notice.
// pacman touches many files per transaction.
const staleDebounce = 2 * time.Second

// WatchDatabases watches the package database directories and emits a
// warning notice when another process changes them, so the user knows the
// snapshot is stale. Must be called after Start. The watcher stops with
// the bridge.
func (b *Bridge) WatchDatabases(conf *alpm.Conf) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	for _, dir := range []string{
		filepath.Join(conf.DBPath, "local"),
		filepath.Join(conf.DBPath, "sync"),
	} {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return err
		}
	}

	go func() {
		defer watcher.Close()

		var timer *time.Timer
		var fire <-chan time.Time

		for {
			select {
			case <-b.ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(staleDebounce)
					fire = timer.C
				} else {
					timer.Reset(staleDebounce)
				}
			case <-fire:
				timer = nil
				fire = nil
				b.post(func(br *Bridge) { br.databasesChanged() })
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return nil
}

// databasesChanged reacts to an external database mutation. Changes made
// by the bridge's own transaction or load are expected and stay silent.
func (b *Bridge) databasesChanged() {
	if b.state == StateExecuting || b.state == StateLoading {
		return
	}
	b.notice(NoticeWarning, "package databases changed on disk; refresh to pick up changes")
}
