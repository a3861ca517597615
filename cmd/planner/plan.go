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
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	cobra "github.com/spf13/cobra"

	"github.com/sergelogvinov/fleet-planner/pkg/apis/v1alpha1"
	"github.com/sergelogvinov/fleet-planner/pkg/operator/options"
	"github.com/sergelogvinov/fleet-planner/pkg/providers/catalog"
	"github.com/sergelogvinov/fleet-planner/pkg/providers/placement"
	"github.com/sergelogvinov/fleet-planner/pkg/providers/report"
	"github.com/sergelogvinov/fleet-planner/pkg/providers/scenario"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

func buildPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "plan",
		Aliases:       []string{"p"},
		Short:         "Plan purchases and placements for a scenario",
		Args:          cobra.ExactArgs(0),
		RunE:          runPlanCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func runPlanCmd(cmd *cobra.Command, _ []string) error {
	return runPlan(cmd.Context(), options.FromContext(cmd.Context()), cmd.OutOrStdout())
}

// loadCatalog reads the scenario and builds its ranked catalog.
func loadCatalog(opts *options.Options) (*v1alpha1.Scenario, *catalog.Catalog, error) {
	s, err := scenario.Load(opts.InputPath)
	if err != nil {
		return nil, nil, err
	}

	settings, err := catalog.LoadSettings(opts.SettingsPath)
	if err != nil {
		return nil, nil, err
	}

	c, err := catalog.NewCatalog(s.Servers, s.VMs, settings)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build catalog: %w", err)
	}

	return s, c, nil
}

func runPlan(ctx context.Context, opts *options.Options, stdout io.Writer) error {
	ctx, runID := withRunID(ctx)
	logger := log.FromContext(ctx)

	s, c, err := loadCatalog(opts)
	if err != nil {
		return err
	}

	logger.V(1).Info("Loaded scenario", "input", opts.InputPath, "servers", c.Len(), "vms", len(c.VMs()), "days", len(s.Days))

	reg := prometheus.NewRegistry()
	engine := placement.NewEngine(ctx, c,
		placement.WithMetrics(placement.NewMetrics(reg)),
		placement.WithInvariantChecks(opts.CheckInvariants),
		placement.WithRunID(runID),
	)

	plan, runErr := engine.Run(ctx, s.Days)

	if opts.MetricsFilePath != "" {
		if err := writeMetrics(opts.MetricsFilePath, reg); err != nil {
			logger.Error(err, "Failed to write metrics", "path", opts.MetricsFilePath)
		}
	}

	if runErr != nil {
		return fmt.Errorf("planning failed after %d days: %w", len(plan.Days), runErr)
	}

	logger.Info("Plan ready", "servers", plan.Summary.Servers,
		"purchaseCost", plan.Summary.PurchaseCost, "operatingCost", plan.Summary.OperatingCost,
		"totalCost", plan.Summary.TotalCost)

	return writePlan(opts, plan, stdout)
}

func writePlan(opts *options.Options, plan *v1alpha1.Plan, stdout io.Writer) error {
	if opts.OutputPath == "-" {
		return report.Write(stdout, plan, report.Format(opts.Format))
	}

	f, err := os.Create(opts.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create output %s: %w", opts.OutputPath, err)
	}
	defer f.Close() //nolint:errcheck

	if err := report.Write(f, plan, report.Format(opts.Format)); err != nil {
		return err
	}

	return f.Close()
}
