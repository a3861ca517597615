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
	"os"

	cobra "github.com/spf13/cobra"

	"github.com/sergelogvinov/fleet-planner/pkg/operator/options"
	"github.com/sergelogvinov/fleet-planner/pkg/providers/scenario"
)

func buildConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "convert",
		Short:         "Convert a scenario into a YAML document",
		Args:          cobra.ExactArgs(0),
		RunE:          runConvert,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func runConvert(cmd *cobra.Command, _ []string) error {
	opts := options.FromContext(cmd.Context())

	s, err := scenario.Load(opts.InputPath)
	if err != nil {
		return err
	}

	data, err := scenario.MarshalYAML(s)
	if err != nil {
		return err
	}

	if opts.OutputPath == "-" {
		_, err = cmd.OutOrStdout().Write(data)

		return err
	}

	return os.WriteFile(opts.OutputPath, data, 0o644) //nolint:gosec
}
