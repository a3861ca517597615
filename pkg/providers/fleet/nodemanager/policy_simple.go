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

package nodemanager

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/sergelogvinov/fleet-planner/pkg/apis/v1alpha1"
)

type simplePolicy struct {
	capacity v1alpha1.Resources
	assigned v1alpha1.Resources
}

var _ Policy = &simplePolicy{}

// PolicySimple name of simple policy
const PolicySimple policyName = "simple"

// NewSimplePolicy returns a node policy counting cores and memory.
func NewSimplePolicy(capacity v1alpha1.Resources) (Policy, error) {
	if capacity.CPU < 0 || capacity.Memory < 0 {
		return nil, fmt.Errorf("node capacity %s must not be negative", capacity)
	}

	return &simplePolicy{
		capacity: capacity,
	}, nil
}

func (p *simplePolicy) Name() string {
	return string(PolicySimple)
}

func (p *simplePolicy) Capacity() v1alpha1.Resources {
	return p.capacity
}

func (p *simplePolicy) Available() v1alpha1.Resources {
	return p.capacity.Sub(p.assigned)
}

func (p *simplePolicy) Fits(req v1alpha1.Resources) bool {
	return req.Fits(p.Available())
}

func (p *simplePolicy) Allocate(req v1alpha1.Resources) error {
	if req.CPU < 0 || req.Memory < 0 {
		return fmt.Errorf("cannot allocate negative resources %s", req)
	}

	if !p.Fits(req) {
		return errors.Wrapf(ErrNotEnoughResources, "requested=%s, available=%s", req, p.Available())
	}

	p.assigned = p.assigned.Add(req)

	return nil
}

func (p *simplePolicy) Release(req v1alpha1.Resources) error {
	if req.CPU < 0 || req.Memory < 0 {
		return fmt.Errorf("cannot release negative resources %s", req)
	}

	if !req.Fits(p.assigned) {
		return errors.Wrapf(ErrCapacityOverflow, "requested=%s, assigned=%s", req, p.assigned)
	}

	p.assigned = p.assigned.Sub(req)

	return nil
}

func (p *simplePolicy) Status() string {
	return fmt.Sprintf("Free: %s, Used: %s", p.Available(), p.assigned)
}
