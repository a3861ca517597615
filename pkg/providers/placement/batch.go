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

package placement

import (
	"slices"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/sergelogvinov/fleet-planner/pkg/apis/v1alpha1"

	"k8s.io/utils/set"
)

type admission struct {
	op v1alpha1.AddOperation
	vm v1alpha1.VMModel
}

// batch is one day of requests in processing order: dual adds, single adds, removes.
// Each partition keeps the arrival order.
type batch struct {
	dual    []admission
	single  []admission
	removes []v1alpha1.RemoveOperation

	// arrival holds the VM ids of the adds in arrival order.
	arrival []int
}

func (b *batch) admissions() []admission {
	return slices.Concat(b.dual, b.single)
}

func (e *Engine) partition(ops []v1alpha1.Operation) (*batch, error) {
	var errs error

	b := &batch{}

	for _, op := range ops {
		switch o := op.(type) {
		case v1alpha1.AddOperation:
			vm, err := e.catalog.VM(o.VMType)
			if err != nil {
				errs = multierr.Append(errs, errors.Wrapf(ErrMalformedRequest, "%s: %v", o, err))

				continue
			}

			if vm.Mode == v1alpha1.DeploymentDual {
				b.dual = append(b.dual, admission{op: o, vm: vm})
			} else {
				b.single = append(b.single, admission{op: o, vm: vm})
			}

			b.arrival = append(b.arrival, o.ID)
		case v1alpha1.RemoveOperation:
			b.removes = append(b.removes, o)
		default:
			errs = multierr.Append(errs, errors.Wrapf(ErrMalformedRequest, "unsupported operation %T", op))
		}
	}

	return b, errs
}

// validate replays the batch against the registry in processing order without changing anything.
// Every problem is reported, not only the first one.
func (e *Engine) validate(b *batch) error {
	var errs error

	added := set.New[int]()

	for _, a := range b.admissions() {
		id := a.op.ID

		if e.registry.Has(id) || added.Has(id) {
			errs = multierr.Append(errs, errors.Wrapf(ErrMalformedRequest, "%s: VM %d is already live", a.op, id))
		} else {
			added.Insert(id)
		}

		if !e.catalog.CanHost(a.vm.NodeDemand()) {
			errs = multierr.Append(errs, errors.Wrapf(ErrInfeasible, "%s: per-node demand %s", a.op, a.vm.NodeDemand()))
		}
	}

	removed := set.New[int]()

	for _, r := range b.removes {
		switch {
		case removed.Has(r.ID):
			errs = multierr.Append(errs, errors.Wrapf(ErrMalformedRequest, "%s: VM %d is removed twice", r, r.ID))
		case !e.registry.Has(r.ID) && !added.Has(r.ID):
			errs = multierr.Append(errs, errors.Wrapf(ErrMalformedRequest, "%s: VM %d is not live", r, r.ID))
		default:
			removed.Insert(r.ID)
		}
	}

	return errs
}
