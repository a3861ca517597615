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
	"encoding/json"
	"fmt"
	"text/tabwriter"

	cobra "github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sergelogvinov/fleet-planner/pkg/operator/options"
	"github.com/sergelogvinov/fleet-planner/pkg/providers/report"
)

type catalogEntry struct {
	Rank         int     `json:"rank" yaml:"rank"`
	Name         string  `json:"name" yaml:"name"`
	CPU          int     `json:"cpu" yaml:"cpu"`
	Memory       int     `json:"memory" yaml:"memory"`
	PurchaseCost int64   `json:"purchaseCost" yaml:"purchaseCost"`
	DailyCost    int64   `json:"dailyCost" yaml:"dailyCost"`
	Efficiency   float64 `json:"efficiency" yaml:"efficiency"`
}

func buildCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "catalog",
		Aliases:       []string{"c"},
		Short:         "Show the server models of a scenario in purchase rank order",
		Args:          cobra.ExactArgs(0),
		RunE:          runCatalog,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	opts := options.FromContext(cmd.Context())

	_, c, err := loadCatalog(opts)
	if err != nil {
		return err
	}

	entries := make([]catalogEntry, 0, c.Len())
	for i, s := range c.Servers() {
		entries = append(entries, catalogEntry{
			Rank:         i,
			Name:         s.Name,
			CPU:          s.CPU,
			Memory:       s.Memory,
			PurchaseCost: s.PurchaseCost,
			DailyCost:    s.DailyCost,
			Efficiency:   s.Efficiency,
		})
	}

	out := cmd.OutOrStdout()

	switch report.Format(opts.Format) {
	case report.FormatYAML:
		enc := yaml.NewEncoder(out)
		if err := enc.Encode(entries); err != nil {
			return err
		}

		return enc.Close()
	case report.FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(entries)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tMODEL\tCPU\tMEMORY\tNODE\tPURCHASE\tDAILY\tSCORE")

	for i, s := range c.Servers() {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\t%d\t%d\t%.4f\n", i, s.Name, s.CPU, s.Memory, s.NodeCapacity, s.PurchaseCost, s.DailyCost, s.Efficiency)
	}

	return tw.Flush()
}
