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

package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sergelogvinov/fleet-planner/pkg/utils/watcher"

	"k8s.io/klog/v2/ktesting"
)

func TestWatcher(t *testing.T) {
	t.Parallel()

	logger, ctx := ktesting.NewTestContext(t)
	ctx, cancel := context.WithCancel(ctx)

	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.txt")
	require.NoError(t, os.WriteFile(path, []byte("0\n"), 0o600))

	events := make(chan watcher.Event, 10)

	config := watcher.DefaultConfig(path, logger)
	config.Debounce = 10 * time.Millisecond

	w, err := watcher.New(config, watcher.HandlerFunc(func(_ context.Context, event watcher.Event) error {
		events <- event

		return nil
	}))
	require.NoError(t, err)

	done := make(chan error, 1)

	go func() {
		done <- w.Run(ctx)
	}()

	// Keep writing until the watcher is registered and reports the change.
	var event watcher.Event

	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(dir, "other.txt"), []byte("1\n"), 0o600)
		_ = os.WriteFile(path, []byte("1\n"), 0o600)

		select {
		case event = <-events:
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, path, filepath.Clean(event.Name))

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherMissingDirectory(t *testing.T) {
	t.Parallel()

	logger, ctx := ktesting.NewTestContext(t)

	w, err := watcher.New(watcher.DefaultConfig(filepath.Join(t.TempDir(), "missing", "scenario.txt"), logger),
		watcher.HandlerFunc(func(context.Context, watcher.Event) error { return nil }))
	require.NoError(t, err)

	assert.Error(t, w.Run(ctx))
}
