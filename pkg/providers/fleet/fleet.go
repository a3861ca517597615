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

package fleet

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/sergelogvinov/fleet-planner/pkg/apis/v1alpha1"
	"github.com/sergelogvinov/fleet-planner/pkg/providers/catalog"
	"github.com/sergelogvinov/fleet-planner/pkg/providers/fleet/nodemanager"

	"k8s.io/utils/set"
)

var (
	// ErrCapacityOverflow is returned when a release exceeds the original node capacity.
	ErrCapacityOverflow = nodemanager.ErrCapacityOverflow
	// ErrServerNotFound is returned for an index outside of the fleet.
	ErrServerNotFound = errors.New("server not found")
	// ErrVMNotHosted is returned when a VM is not hosted by the server.
	ErrVMNotHosted = errors.New("VM is not hosted by server")
)

// HostedVM is a VM slice held by a server.
type HostedVM struct {
	Node v1alpha1.NodeID
	// Demand is the per-node demand, reserved on each node the VM holds.
	Demand v1alpha1.Resources
}

// ServerInstance is a purchased server.
type ServerInstance struct {
	// Index is the purchase order of the server in the fleet.
	Index int
	Model catalog.ServerEntry
	// PurchaseDay is the day the server was bought, 1-based.
	PurchaseDay int

	nodes   map[v1alpha1.NodeID]nodemanager.Policy
	nodeVMs map[v1alpha1.NodeID]set.Set[int]
	hosted  map[int]HostedVM
}

// Fleet is the ordered set of purchased servers. Servers are never removed.
type Fleet struct {
	servers []*ServerInstance
}

func New() *Fleet {
	return &Fleet{}
}

// Purchase appends a new server with both nodes at full capacity and returns its index.
func (f *Fleet) Purchase(model catalog.ServerEntry, day int) (int, error) {
	s := &ServerInstance{
		Index:       len(f.servers),
		Model:       model,
		PurchaseDay: day,
		nodes:       make(map[v1alpha1.NodeID]nodemanager.Policy, len(v1alpha1.Nodes)),
		nodeVMs:     make(map[v1alpha1.NodeID]set.Set[int], len(v1alpha1.Nodes)),
		hosted:      map[int]HostedVM{},
	}

	for _, node := range v1alpha1.Nodes {
		policy, err := nodemanager.NewSimplePolicy(model.NodeCapacity)
		if err != nil {
			return 0, fmt.Errorf("failed to create node %s policy for model %s: %w", node, model.Name, err)
		}

		s.nodes[node] = policy
		s.nodeVMs[node] = set.New[int]()
	}

	f.servers = append(f.servers, s)

	return s.Index, nil
}

// Len returns the number of purchased servers.
func (f *Fleet) Len() int {
	return len(f.servers)
}

// Servers returns the servers in purchase order.
func (f *Fleet) Servers() []*ServerInstance {
	return f.servers
}

// Server returns the server with the given index.
func (f *Fleet) Server(index int) (*ServerInstance, error) {
	if index < 0 || index >= len(f.servers) {
		return nil, errors.Wrapf(ErrServerNotFound, "index %d", index)
	}

	return f.servers[index], nil
}

// TryReserve reserves req on the node of a server. NodeBoth reserves req on each node.
// Nothing changes unless the whole reservation fits.
func (f *Fleet) TryReserve(index int, node v1alpha1.NodeID, req v1alpha1.Resources) bool {
	s, err := f.Server(index)
	if err != nil {
		return false
	}

	return s.tryReserve(node, req)
}

// Release gives req back to the node of a server. NodeBoth releases req on each node.
func (f *Fleet) Release(index int, node v1alpha1.NodeID, req v1alpha1.Resources) error {
	s, err := f.Server(index)
	if err != nil {
		return err
	}

	return s.release(node, req)
}

// Attach records that a VM holds req on the node of a server.
func (f *Fleet) Attach(index, vmID int, node v1alpha1.NodeID, req v1alpha1.Resources) error {
	s, err := f.Server(index)
	if err != nil {
		return err
	}

	if _, ok := s.hosted[vmID]; ok {
		return fmt.Errorf("VM %d is already hosted by server %d", vmID, index)
	}

	if len(nodesOf(node)) == 0 {
		return fmt.Errorf("server %d has no node %q", index, node)
	}

	s.hosted[vmID] = HostedVM{Node: node, Demand: req}

	for _, n := range nodesOf(node) {
		s.nodeVMs[n].Insert(vmID)
	}

	return nil
}

// Detach forgets a VM hosted by a server.
func (f *Fleet) Detach(index, vmID int) (HostedVM, error) {
	s, err := f.Server(index)
	if err != nil {
		return HostedVM{}, err
	}

	h, ok := s.hosted[vmID]
	if !ok {
		return HostedVM{}, errors.Wrapf(ErrVMNotHosted, "VM %d, server %d", vmID, index)
	}

	delete(s.hosted, vmID)

	for _, n := range nodesOf(h.Node) {
		s.nodeVMs[n].Delete(vmID)
	}

	return h, nil
}

// DailyCost returns the operating cost of the whole fleet for one day.
func (f *Fleet) DailyCost() int64 {
	return lo.SumBy(f.servers, func(s *ServerInstance) int64 { return s.Model.DailyCost })
}

// CheckInvariants verifies that every node's free capacity plus the demand of the VMs it hosts
// equals the node capacity.
func (f *Fleet) CheckInvariants() error {
	var errs error

	for _, s := range f.servers {
		for _, node := range v1alpha1.Nodes {
			used := v1alpha1.Resources{}

			for _, vmID := range s.nodeVMs[node].UnsortedList() {
				used = used.Add(s.hosted[vmID].Demand)
			}

			if total := s.nodes[node].Available().Add(used); total != s.Model.NodeCapacity {
				errs = multierr.Append(errs, fmt.Errorf("server %d node %s: free+used %s != capacity %s", s.Index, node, total, s.Model.NodeCapacity))
			}
		}
	}

	return errs
}

// Status returns the free capacity of every server.
func (f *Fleet) Status() string {
	return strings.Join(lo.Map(f.servers, func(s *ServerInstance, _ int) string {
		return fmt.Sprintf("%d(%s)", s.Index, s.Status())
	}), ", ")
}

// Free returns the free capacity of a node.
func (s *ServerInstance) Free(node v1alpha1.NodeID) v1alpha1.Resources {
	if p, ok := s.nodes[node]; ok {
		return p.Available()
	}

	return v1alpha1.Resources{}
}

// Fits reports whether req fits the node. NodeBoth checks both nodes.
func (s *ServerInstance) Fits(node v1alpha1.NodeID, req v1alpha1.Resources) bool {
	nodes := nodesOf(node)
	if len(nodes) == 0 {
		return false
	}

	return lo.EveryBy(nodes, func(n v1alpha1.NodeID) bool {
		return s.nodes[n].Fits(req)
	})
}

// Hosted returns the VM ids held by a node in ascending order.
func (s *ServerInstance) Hosted(node v1alpha1.NodeID) []int {
	return s.nodeVMs[node].SortedList()
}

// HostedVM returns the slice held by a VM.
func (s *ServerInstance) HostedVM(vmID int) (HostedVM, bool) {
	h, ok := s.hosted[vmID]

	return h, ok
}

// Status returns the free capacity of both nodes, e.g. "M1 A: 0/0, B: 2/2".
func (s *ServerInstance) Status() string {
	return fmt.Sprintf("%s A: %s, B: %s", s.Model.Name, s.Free(v1alpha1.NodeA), s.Free(v1alpha1.NodeB))
}

func (s *ServerInstance) tryReserve(node v1alpha1.NodeID, req v1alpha1.Resources) bool {
	if !s.Fits(node, req) {
		return false
	}

	reserved := []v1alpha1.NodeID{}

	for _, n := range nodesOf(node) {
		if err := s.nodes[n].Allocate(req); err != nil {
			for _, r := range reserved {
				_ = s.nodes[r].Release(req)
			}

			return false
		}

		reserved = append(reserved, n)
	}

	return true
}

func (s *ServerInstance) release(node v1alpha1.NodeID, req v1alpha1.Resources) error {
	nodes := nodesOf(node)
	if len(nodes) == 0 {
		return fmt.Errorf("server %d has no node %q", s.Index, node)
	}

	for _, n := range nodes {
		free := s.nodes[n].Available().Add(req)
		if !free.Fits(s.nodes[n].Capacity()) {
			return errors.Wrapf(ErrCapacityOverflow, "server %d node %s: releasing %s, free %s, capacity %s",
				s.Index, n, req, s.nodes[n].Available(), s.nodes[n].Capacity())
		}
	}

	for _, n := range nodes {
		if err := s.nodes[n].Release(req); err != nil {
			return fmt.Errorf("server %d node %s: %w", s.Index, n, err)
		}
	}

	return nil
}

func nodesOf(node v1alpha1.NodeID) []v1alpha1.NodeID {
	switch node {
	case v1alpha1.NodeBoth:
		return v1alpha1.Nodes
	case v1alpha1.NodeA, v1alpha1.NodeB:
		return []v1alpha1.NodeID{node}
	}

	return nil
}
