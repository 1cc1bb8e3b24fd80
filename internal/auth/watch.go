// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/jeranaias/parley-tui/internal/util"
)

// Watch calls onChange whenever the token file is changed by someone else,
// until ctx is done. The parent directory is watched rather than the file
// because atomic writes replace the file.
func (s *Store) Watch(ctx context.Context, onChange func()) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, util.PrivateDirPerm); err != nil {
		return fmt.Errorf("watch token: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch token: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch token: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != s.path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				changed, err := s.Reload()
				if err != nil {
					s.log.Warn("token reload failed", zap.Error(err))
					continue
				}
				if changed {
					s.log.Info("token changed on disk", zap.Bool("present", s.HasValidToken()))
					onChange()
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Warn("token watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
