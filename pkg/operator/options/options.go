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

package options

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/pflag"

	"github.com/sergelogvinov/fleet-planner/pkg/providers/report"

	"sigs.k8s.io/karpenter/pkg/utils/env"
)

const (
	inputEnvVarName = "PLANNER_INPUT"
	inputFlagName   = "input"

	outputEnvVarName = "PLANNER_OUTPUT"
	outputFlagName   = "output"

	formatEnvVarName = "PLANNER_FORMAT"
	formatFlagName   = "format"

	settingsEnvVarName = "PLANNER_SETTINGS"
	settingsFlagName   = "settings"

	metricsFileEnvVarName = "PLANNER_METRICS_FILE"
	metricsFileFlagName   = "metrics-file"

	checkInvariantsEnvVarName = "PLANNER_CHECK_INVARIANTS"
	checkInvariantsFlagName   = "check-invariants"

	verbosityEnvVarName = "VERBOSITY"
	verbosityFlagName   = "verbosity"
)

type optionsKey struct{}

type Options struct {
	// InputPath is the scenario file, "-" for stdin.
	InputPath string
	// OutputPath is where the plan is written, "-" for stdout.
	OutputPath string
	Format     string
	// SettingsPath is an optional file with the ranking settings.
	SettingsPath    string
	MetricsFilePath string
	CheckInvariants bool
	Verbosity       int
}

func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.InputPath, inputFlagName, "i", env.WithDefaultString(inputEnvVarName, "-"), "Path to the scenario file, - reads stdin.")
	fs.StringVarP(&o.OutputPath, outputFlagName, "o", env.WithDefaultString(outputEnvVarName, "-"), "Path to the plan file, - writes stdout.")
	fs.StringVarP(&o.Format, formatFlagName, "f", env.WithDefaultString(formatEnvVarName, string(report.FormatText)), "Plan format: text, yaml or json.")
	fs.StringVar(&o.SettingsPath, settingsFlagName, env.WithDefaultString(settingsEnvVarName, ""), "Path to the ranking settings file.")
	fs.StringVar(&o.MetricsFilePath, metricsFileFlagName, env.WithDefaultString(metricsFileEnvVarName, ""), "Write the run metrics to this file.")
	fs.BoolVar(&o.CheckInvariants, checkInvariantsFlagName, env.WithDefaultBool(checkInvariantsEnvVarName, false), "Verify the capacity books after every day.")
	fs.IntVarP(&o.Verbosity, verbosityFlagName, "v", env.WithDefaultInt(verbosityEnvVarName, 0), "Verbosity level (0=info, 1=per day, 2=per VM, -1=errors only)")
}

func (o *Options) Validate() error {
	if o.InputPath == "" {
		return fmt.Errorf("--%s must not be empty", inputFlagName)
	}

	if o.OutputPath == "" {
		return fmt.Errorf("--%s must not be empty", outputFlagName)
	}

	if !lo.Contains(report.Formats, report.Format(o.Format)) {
		return fmt.Errorf("--%s must be one of %v, got %q", formatFlagName, report.Formats, o.Format)
	}

	return nil
}

func (o *Options) ToContext(ctx context.Context) context.Context {
	return ToContext(ctx, o)
}

func ToContext(ctx context.Context, opts *Options) context.Context {
	return context.WithValue(ctx, optionsKey{}, opts)
}

func FromContext(ctx context.Context) *Options {
	retval := ctx.Value(optionsKey{})
	if retval == nil {
		return nil
	}

	return retval.(*Options)
}
