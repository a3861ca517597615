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

// Package report writes a plan in the line format of the request stream, as YAML or as JSON.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sergelogvinov/fleet-planner/pkg/apis/v1alpha1"
)

// Format is the encoding of a plan.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatYAML, FormatJSON}

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// Write encodes the plan in the given format.
func Write(w io.Writer, plan *v1alpha1.Plan, format Format) error {
	switch format {
	case FormatText:
		return WriteText(w, plan)
	case FormatYAML:
		return WriteYAML(w, plan)
	case FormatJSON:
		return WriteJSON(w, plan)
	}

	return errors.Wrapf(ErrUnknownFormat, "%q", format)
}

// WriteText writes one block per day:
//
//	(purchase, Q)          followed by Q lines (model, count)
//	(migration, W)         followed by W lines (vmID, serverID) or (vmID, serverID, node)
//	(serverID)             for each dual placement, in arrival order
//	(serverID, node)       for each single placement, in arrival order
func WriteText(w io.Writer, plan *v1alpha1.Plan) error {
	bw := bufio.NewWriter(w)
	numbering := NewNumbering()

	for i := range plan.Days {
		day := &plan.Days[i]
		numbering.Assign(day)

		fmt.Fprintf(bw, "(purchase, %d)\n", len(day.Purchases))

		for _, p := range day.Purchases {
			fmt.Fprintf(bw, "(%s, %d)\n", p.Model, p.Count)
		}

		fmt.Fprintf(bw, "(migration, %d)\n", len(day.Migrations))

		for _, m := range day.Migrations {
			id, err := serverID(numbering, day.Day, m.Server)
			if err != nil {
				return err
			}

			if m.Node == v1alpha1.NodeBoth {
				fmt.Fprintf(bw, "(%d, %d)\n", m.VMID, id)
			} else {
				fmt.Fprintf(bw, "(%d, %d, %s)\n", m.VMID, id, m.Node)
			}
		}

		for _, p := range day.Placements {
			id, err := serverID(numbering, day.Day, p.Server)
			if err != nil {
				return err
			}

			if p.Node == v1alpha1.NodeBoth {
				fmt.Fprintf(bw, "(%d)\n", id)
			} else {
				fmt.Fprintf(bw, "(%d, %s)\n", id, p.Node)
			}
		}
	}

	return bw.Flush()
}

func serverID(n *Numbering, day, index int) (int, error) {
	id, ok := n.ID(index)
	if !ok {
		return 0, fmt.Errorf("day %d refers to server %d which was never purchased", day, index)
	}

	return id, nil
}

// WriteYAML writes the plan as a YAML document. Servers keep their fleet indexes.
func WriteYAML(w io.Writer, plan *v1alpha1.Plan) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(plan); err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	return enc.Close()
}

// WriteJSON writes the plan as an indented JSON document. Servers keep their fleet indexes.
func WriteJSON(w io.Writer, plan *v1alpha1.Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(plan); err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	return nil
}
