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

package registry

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/sergelogvinov/fleet-planner/pkg/apis/v1alpha1"
)

var (
	// ErrAlreadyRegistered is returned when a live VM id is registered again.
	ErrAlreadyRegistered = errors.New("VM already registered")
	// ErrNotRegistered is returned for an id which is not live.
	ErrNotRegistered = errors.New("VM not registered")
)

// Entry remembers what a live VM is and where it runs.
type Entry struct {
	VMID   int
	VMType string
	Mode   v1alpha1.DeploymentMode
	// Server is the purchase order index of the hosting server.
	Server int
	// Node is the node chosen at admission, NodeBoth for dual deployments.
	Node v1alpha1.NodeID
}

// Registry maps live VM ids to their placement.
type Registry struct {
	entries map[int]Entry
	peak    int
}

func New() *Registry {
	return &Registry{
		entries: map[int]Entry{},
	}
}

// Register adds a live VM.
func (r *Registry) Register(e Entry) error {
	if _, ok := r.entries[e.VMID]; ok {
		return errors.Wrapf(ErrAlreadyRegistered, "VM %d", e.VMID)
	}

	r.entries[e.VMID] = e
	r.peak = max(r.peak, len(r.entries))

	return nil
}

// Get returns the entry of a live VM.
func (r *Registry) Get(vmID int) (Entry, bool) {
	e, ok := r.entries[vmID]

	return e, ok
}

// Has reports whether the VM is live.
func (r *Registry) Has(vmID int) bool {
	_, ok := r.entries[vmID]

	return ok
}

// Unregister removes a live VM and returns its entry.
func (r *Registry) Unregister(vmID int) (Entry, error) {
	e, ok := r.entries[vmID]
	if !ok {
		return Entry{}, errors.Wrapf(ErrNotRegistered, "VM %d", vmID)
	}

	delete(r.entries, vmID)

	return e, nil
}

// Len returns the number of live VMs.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Peak returns the highest number of VMs live at the same time.
func (r *Registry) Peak() int {
	return r.peak
}

// Entries returns the live VMs ordered by id.
func (r *Registry) Entries() []Entry {
	entries := lo.Values(r.entries)

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].VMID < entries[j].VMID
	})

	return entries
}
