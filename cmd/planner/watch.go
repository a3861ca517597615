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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	cobra "github.com/spf13/cobra"

	"github.com/sergelogvinov/fleet-planner/pkg/operator/options"
	"github.com/sergelogvinov/fleet-planner/pkg/utils/watcher"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

func buildWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "watch",
		Aliases:       []string{"w"},
		Short:         "Re-plan every time the scenario file changes",
		Args:          cobra.ExactArgs(0),
		RunE:          runWatch,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func runWatch(cmd *cobra.Command, _ []string) error {
	opts := options.FromContext(cmd.Context())
	if opts.InputPath == "-" {
		return errors.New("watch needs a scenario file, not stdin")
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := log.FromContext(ctx).WithName("watch")

	replan := func(ctx context.Context) {
		if err := runPlan(ctx, opts, cmd.OutOrStdout()); err != nil {
			logger.Error(err, "Planning failed", "input", opts.InputPath)
		}
	}

	w, err := watcher.New(watcher.DefaultConfig(opts.InputPath, logger), watcher.HandlerFunc(func(ctx context.Context, event watcher.Event) error {
		logger.Info("Scenario changed", "name", event.Name, "op", event.Op.String())
		replan(ctx)

		return nil
	}))
	if err != nil {
		return err
	}

	replan(ctx)

	logger.Info("Watching scenario", "input", opts.InputPath)

	return w.Run(ctx)
}
