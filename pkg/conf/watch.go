// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

package conf

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Watch reloads the configuration each time the config file is written,
// and passes the new configuration to onChange.
// It returns when the context is cancelled.
func Watch(ctx context.Context, configFile string, onChange func(*Config)) error {
	if configFile == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	defer watcher.Close()

	// watch the directory, editors often replace the file instead of writing it
	path, _ := filepath.Abs(configFile)
	if err = watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", configFile, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				c, err := Init(configFile)
				if err != nil {
					log.Errorf("Config reload failed: %v", err)
					continue
				}
				log.Infof("Config reloaded from %s", configFile)
				onChange(c)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("Config watcher error: %v", err)
		}
	}
}
