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
	"github.com/pkg/errors"

	"github.com/sergelogvinov/fleet-planner/pkg/apis/v1alpha1"
)

// remove gives back exactly what the VM reserved at admission, on the nodes recorded then.
func (e *Engine) remove(st *dayState, r v1alpha1.RemoveOperation) error {
	entry, ok := e.registry.Get(r.ID)
	if !ok {
		return errors.Wrapf(ErrMalformedRequest, "%s: VM %d is not live", r, r.ID)
	}

	s, err := e.fleet.Server(entry.Server)
	if err != nil {
		return err
	}

	hosted, ok := s.HostedVM(r.ID)
	if !ok || hosted.Node != entry.Node {
		return errors.Wrapf(ErrBookkeeping, "VM %d is registered on server %d node %s but not hosted there",
			r.ID, entry.Server, entry.Node)
	}

	if err := e.fleet.Release(entry.Server, entry.Node, hosted.Demand); err != nil {
		return err
	}

	if _, err := e.fleet.Detach(entry.Server, r.ID); err != nil {
		return err
	}

	if _, err := e.registry.Unregister(r.ID); err != nil {
		return err
	}

	e.metrics.Removals.Inc()
	st.log.V(2).Info("Removed VM", "vm", r.ID, "server", entry.Server, "node", entry.Node)

	return nil
}
