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

package scenario

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/sergelogvinov/fleet-planner/pkg/apis/v1alpha1"

	"sigs.k8s.io/yaml"
)

// File is the YAML/JSON document of a scenario.
//
//	servers:
//	- {name: M1, cpu: 4, memory: 4, purchaseCost: 100, dailyCost: 2}
//	vms:
//	- {name: V1, cpu: 2, memory: 2, mode: Single}
//	days:
//	- - {op: add, type: V1, id: 1}
//	- - {op: del, id: 1}
type File struct {
	Servers []v1alpha1.ServerModel `json:"servers"`
	VMs     []v1alpha1.VMModel     `json:"vms"`
	Days    [][]Request            `json:"days"`
}

// Request is one entry of the timeline.
type Request struct {
	Op   string `json:"op"`
	Type string `json:"type,omitempty"`
	ID   int    `json:"id"`
}

// ParseYAML decodes a YAML or JSON scenario document. Unknown fields are rejected.
func ParseYAML(data []byte) (*v1alpha1.Scenario, error) {
	f := File{}
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, errors.Wrap(ErrSyntax, err.Error())
	}

	return f.Scenario()
}

// Scenario converts the document into a scenario.
func (f *File) Scenario() (*v1alpha1.Scenario, error) {
	s := &v1alpha1.Scenario{
		Servers: f.Servers,
		VMs:     f.VMs,
		Days:    make([][]v1alpha1.Operation, 0, len(f.Days)),
	}

	for day, requests := range f.Days {
		ops := make([]v1alpha1.Operation, 0, len(requests))

		for i, r := range requests {
			op, err := r.Operation()
			if err != nil {
				return nil, fmt.Errorf("day %d request %d: %w", day+1, i+1, err)
			}

			ops = append(ops, op)
		}

		s.Days = append(s.Days, ops)
	}

	return s, nil
}

func (r Request) Operation() (v1alpha1.Operation, error) {
	switch r.Op {
	case opAdd:
		if r.Type == "" {
			return nil, errors.Wrap(ErrSyntax, "add request without a VM type")
		}

		return v1alpha1.AddOperation{VMType: r.Type, ID: r.ID}, nil
	case opDel:
		if r.Type != "" {
			return nil, errors.Wrapf(ErrSyntax, "del request with a VM type %q", r.Type)
		}

		return v1alpha1.RemoveOperation{ID: r.ID}, nil
	}

	return nil, errors.Wrapf(ErrSyntax, "unknown op %q", r.Op)
}

// NewFile converts a scenario into its document form.
func NewFile(s *v1alpha1.Scenario) *File {
	f := &File{
		Servers: s.Servers,
		VMs:     s.VMs,
		Days:    make([][]Request, 0, len(s.Days)),
	}

	for _, ops := range s.Days {
		requests := make([]Request, 0, len(ops))

		for _, op := range ops {
			switch o := op.(type) {
			case v1alpha1.AddOperation:
				requests = append(requests, Request{Op: opAdd, Type: o.VMType, ID: o.ID})
			case v1alpha1.RemoveOperation:
				requests = append(requests, Request{Op: opDel, ID: o.ID})
			}
		}

		f.Days = append(f.Days, requests)
	}

	return f
}

// MarshalYAML encodes the scenario as a YAML document.
func MarshalYAML(s *v1alpha1.Scenario) ([]byte, error) {
	return yaml.Marshal(NewFile(s))
}
