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
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"github.com/sergelogvinov/fleet-planner/pkg/apis/v1alpha1"
	"github.com/sergelogvinov/fleet-planner/pkg/providers/registry"
)

// admitDual places the VM on the first server with room for half of its demand on both nodes.
func (e *Engine) admitDual(st *dayState, a admission) error {
	demand := a.vm.NodeDemand()

	for _, s := range e.fleet.Servers() {
		if e.fleet.TryReserve(s.Index, v1alpha1.NodeBoth, demand) {
			return e.place(st, a, s.Index, v1alpha1.NodeBoth, false)
		}
	}

	index, err := e.purchase(st, demand)
	if err != nil {
		return fmt.Errorf("failed to admit %s: %w", a.op, err)
	}

	if !e.fleet.TryReserve(index, v1alpha1.NodeBoth, demand) {
		return errors.Wrapf(ErrBookkeeping, "new server %d cannot host %s", index, a.op)
	}

	return e.place(st, a, index, v1alpha1.NodeBoth, true)
}

// admitSingle places the VM on the first server with room on one node, node A first.
func (e *Engine) admitSingle(st *dayState, a admission) error {
	demand := a.vm.NodeDemand()

	for _, s := range e.fleet.Servers() {
		for _, node := range v1alpha1.Nodes {
			if e.fleet.TryReserve(s.Index, node, demand) {
				return e.place(st, a, s.Index, node, false)
			}
		}
	}

	index, err := e.purchase(st, demand)
	if err != nil {
		return fmt.Errorf("failed to admit %s: %w", a.op, err)
	}

	if !e.fleet.TryReserve(index, v1alpha1.NodeA, demand) {
		return errors.Wrapf(ErrBookkeeping, "new server %d cannot host %s", index, a.op)
	}

	return e.place(st, a, index, v1alpha1.NodeA, true)
}

// purchase buys the server model picked by the frontier for a per-node demand.
func (e *Engine) purchase(st *dayState, demand v1alpha1.Resources) (int, error) {
	rank, err := e.frontier.Select(e.catalog, st.plan.Day, demand)
	if err != nil {
		return 0, err
	}

	return e.buy(st, rank)
}

func (e *Engine) buy(st *dayState, rank int) (int, error) {
	model := e.catalog.Server(rank)

	index, err := e.fleet.Purchase(model, st.plan.Day)
	if err != nil {
		return 0, err
	}

	e.ledger.RecordPurchase(st.plan.Day, model.ServerModel)
	e.metrics.Purchases.WithLabelValues(model.Name).Inc()

	st.plan.NewServers = append(st.plan.NewServers, v1alpha1.ServerRef{Index: index, Model: model.Name})
	st.log.V(2).Info("Purchased server", "server", index, "model", model.Name, "rank", rank,
		"frontier", e.frontier.Limit())

	return index, nil
}

// place records a VM whose demand is already reserved on the server.
func (e *Engine) place(st *dayState, a admission, index int, node v1alpha1.NodeID, purchased bool) error {
	if err := e.fleet.Attach(index, a.op.ID, node, a.vm.NodeDemand()); err != nil {
		return err
	}

	if err := e.registry.Register(registry.Entry{
		VMID:   a.op.ID,
		VMType: a.vm.Name,
		Mode:   a.vm.Mode,
		Server: index,
		Node:   node,
	}); err != nil {
		return err
	}

	st.placements[a.op.ID] = v1alpha1.Placement{VMID: a.op.ID, Server: index, Node: node}

	e.metrics.Admissions.WithLabelValues(string(a.vm.Mode), strconv.FormatBool(purchased)).Inc()
	st.log.V(2).Info("Placed VM", "vm", a.op.ID, "type", a.vm.Name, "server", index, "node", node)

	return nil
}
