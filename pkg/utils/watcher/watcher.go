/*
Copyright 2025 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package watcher calls a handler whenever a file is rewritten.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
)

// Event is a change of the watched file.
type Event struct {
	Name string
	Op   fsnotify.Op
}

// Handler reacts to changes of the watched file.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc is a function adapter for Handler
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls the HandlerFunc with the given parameters
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Config holds the configuration of a watcher
type Config struct {
	// Path is the watched file. Its directory is watched so that atomic replacements are seen.
	Path string
	// Debounce merges the events of one save into a single call.
	Debounce time.Duration

	Logger logr.Logger
}

// DefaultConfig returns a default watcher configuration
func DefaultConfig(path string, logger logr.Logger) Config {
	return Config{
		Path:     path,
		Debounce: 200 * time.Millisecond,
		Logger:   logger,
	}
}

// Watcher runs the handler after every change of a file.
type Watcher struct {
	config  Config
	path    string
	handler Handler
	logger  logr.Logger

	watcher *fsnotify.Watcher
}

// New creates a watcher. Nothing is watched before Run.
func New(config Config, handler Handler) (*Watcher, error) {
	path, err := filepath.Abs(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", config.Path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		config:  config,
		path:    path,
		handler: handler,
		logger:  config.Logger,
		watcher: watcher,
	}, nil
}

// Run watches the file until ctx is done. Handler errors are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch path %s: %w", dir, err)
	}

	w.logger.V(1).Info("Starting file watcher", "path", w.path)

	relevantOps := fsnotify.Create | fsnotify.Write

	var (
		timer *time.Timer
		fire  <-chan time.Time
		last  Event
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != w.path || event.Op&relevantOps == 0 {
				continue
			}

			w.logger.V(3).Info("File system event received", "name", event.Name, "op", event.Op)

			last = Event{Name: event.Name, Op: event.Op}

			if timer == nil {
				timer = time.NewTimer(w.config.Debounce)
			} else {
				timer.Reset(w.config.Debounce)
			}

			fire = timer.C

		case <-fire:
			fire = nil

			if err := w.handler.Handle(ctx, last); err != nil {
				w.logger.Error(err, "Handler failed", "name", last.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}

			w.logger.Error(err, "File watcher error")

		case <-ctx.Done():
			w.logger.V(1).Info("File watcher shutting down")

			return nil
		}
	}
}
