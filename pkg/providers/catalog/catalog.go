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

package catalog

import (
	"fmt"
	"sort"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/sergelogvinov/fleet-planner/pkg/apis/v1alpha1"
)

// ServerEntry is a ranked server model with its derived values.
type ServerEntry struct {
	v1alpha1.ServerModel

	// NodeCapacity is the capacity of each of the two nodes.
	NodeCapacity v1alpha1.Resources
	// Efficiency is the cost-efficiency score, lower is better.
	// It only decides the rank of the model.
	Efficiency float64
}

// Catalog holds the immutable server and VM lookup tables of a run.
// Server models are ranked by efficiency score; indexes returned by the catalog refer to that rank.
type Catalog struct {
	servers     []ServerEntry
	serverIndex map[string]int

	vms     map[string]v1alpha1.VMModel
	vmNames []string
}

// NewCatalog validates the models and ranks the servers.
func NewCatalog(servers []v1alpha1.ServerModel, vms []v1alpha1.VMModel, settings Settings) (*Catalog, error) {
	var errs error

	if len(servers) == 0 {
		errs = multierr.Append(errs, errors.Wrap(ErrInvalidCatalog, "no server models"))
	}

	c := &Catalog{
		servers:     make([]ServerEntry, 0, len(servers)),
		serverIndex: make(map[string]int, len(servers)),
		vms:         make(map[string]v1alpha1.VMModel, len(vms)),
		vmNames:     make([]string, 0, len(vms)),
	}

	seen := map[string]bool{}

	for _, s := range servers {
		if err := validateServer(s); err != nil {
			errs = multierr.Append(errs, err)

			continue
		}

		if seen[s.Name] {
			errs = multierr.Append(errs, errors.Wrapf(ErrInvalidCatalog, "duplicate server model %s", s.Name))

			continue
		}

		seen[s.Name] = true

		c.servers = append(c.servers, ServerEntry{
			ServerModel:  s,
			NodeCapacity: s.NodeCapacity(),
			Efficiency:   settings.Score(s.CPU, s.Memory, s.PurchaseCost, s.DailyCost),
		})
	}

	for _, vm := range vms {
		if err := validateVM(vm); err != nil {
			errs = multierr.Append(errs, err)

			continue
		}

		if _, ok := c.vms[vm.Name]; ok {
			errs = multierr.Append(errs, errors.Wrapf(ErrInvalidCatalog, "duplicate VM model %s", vm.Name))

			continue
		}

		c.vms[vm.Name] = vm
		c.vmNames = append(c.vmNames, vm.Name)
	}

	if errs != nil {
		return nil, errs
	}

	// Equal scores keep their catalog order.
	sort.SliceStable(c.servers, func(i, j int) bool {
		return c.servers[i].Efficiency < c.servers[j].Efficiency
	})

	for i, s := range c.servers {
		c.serverIndex[s.Name] = i
	}

	return c, nil
}

func validateServer(s v1alpha1.ServerModel) error {
	switch {
	case s.Name == "":
		return errors.Wrap(ErrInvalidCatalog, "server model without name")
	case s.CPU <= 0 || s.Memory <= 0:
		return errors.Wrapf(ErrInvalidCatalog, "server model %s has no capacity", s.Name)
	case s.CPU%2 != 0 || s.Memory%2 != 0:
		return errors.Wrapf(ErrInvalidCatalog, "server model %s capacity %d/%d cannot be split into two equal nodes", s.Name, s.CPU, s.Memory)
	case s.PurchaseCost < 0 || s.DailyCost < 0:
		return errors.Wrapf(ErrInvalidCatalog, "server model %s has negative cost", s.Name)
	}

	return nil
}

func validateVM(vm v1alpha1.VMModel) error {
	switch {
	case vm.Name == "":
		return errors.Wrap(ErrInvalidCatalog, "VM model without name")
	case vm.CPU < 0 || vm.Memory < 0:
		return errors.Wrapf(ErrInvalidCatalog, "VM model %s has negative demand", vm.Name)
	case vm.Mode != v1alpha1.DeploymentSingle && vm.Mode != v1alpha1.DeploymentDual:
		return errors.Wrapf(ErrInvalidCatalog, "VM model %s has unknown deployment mode %q", vm.Name, vm.Mode)
	}

	return nil
}

// Len returns the number of server models.
func (c *Catalog) Len() int {
	return len(c.servers)
}

// Server returns the server model at the given rank.
func (c *Catalog) Server(i int) ServerEntry {
	return c.servers[i]
}

// Servers returns the ranked server models.
func (c *Catalog) Servers() []ServerEntry {
	return c.servers
}

// ServerByName returns the rank of a server model.
func (c *Catalog) ServerByName(name string) (int, error) {
	i, ok := c.serverIndex[name]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownServerModel, "model %s", name)
	}

	return i, nil
}

// VM returns a VM model by name.
func (c *Catalog) VM(name string) (v1alpha1.VMModel, error) {
	vm, ok := c.vms[name]
	if !ok {
		return v1alpha1.VMModel{}, errors.Wrapf(ErrUnknownVMModel, "model %s", name)
	}

	return vm, nil
}

// VMs returns the VM models in catalog order.
func (c *Catalog) VMs() []v1alpha1.VMModel {
	return lo.Map(c.vmNames, func(name string, _ int) v1alpha1.VMModel { return c.vms[name] })
}

// CanHost reports whether at least one server model has a node large enough for the per-node demand.
func (c *Catalog) CanHost(nodeDemand v1alpha1.Resources) bool {
	return lo.ContainsBy(c.servers, func(s ServerEntry) bool {
		return nodeDemand.Fits(s.NodeCapacity)
	})
}

// Hash returns a fingerprint of the ranked catalog.
func (c *Catalog) Hash() string {
	return fmt.Sprint(lo.Must(hashstructure.Hash(struct {
		Servers []ServerEntry
		VMs     []v1alpha1.VMModel
	}{c.servers, c.VMs()}, hashstructure.FormatV2, nil)))
}
