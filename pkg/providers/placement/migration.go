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
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/sergelogvinov/fleet-planner/pkg/apis/v1alpha1"
)

// extend runs the expander and the migrator and applies their decisions.
func (e *Engine) extend(ctx context.Context, st *dayState) error {
	models, err := e.expander.Expand(ctx, st.plan.Day, e.fleet)
	if err != nil {
		return fmt.Errorf("expander failed: %w", err)
	}

	for _, name := range models {
		rank, err := e.catalog.ServerByName(name)
		if err != nil {
			return fmt.Errorf("expander failed: %w", err)
		}

		if _, err := e.buy(st, rank); err != nil {
			return err
		}
	}

	migrations, err := e.migrator.Migrate(ctx, st.plan.Day, e.fleet, e.registry)
	if err != nil {
		return fmt.Errorf("migrator failed: %w", err)
	}

	for _, m := range migrations {
		if err := e.migrate(st, m); err != nil {
			if !errors.Is(err, ErrMalformedRequest) {
				return err
			}

			st.log.Info("Skipped migration", "vm", m.VMID, "server", m.Server, "node", m.Node, "reason", err.Error())
			e.metrics.RefusedMigrations.Inc()
		}
	}

	return nil
}

// migrate moves a live VM. A refused move returns ErrMalformedRequest and leaves the VM where it was.
func (e *Engine) migrate(st *dayState, m v1alpha1.Migration) error {
	entry, ok := e.registry.Get(m.VMID)
	if !ok {
		return errors.Wrapf(ErrMalformedRequest, "migration of VM %d: not live", m.VMID)
	}

	if (entry.Mode == v1alpha1.DeploymentDual) != (m.Node == v1alpha1.NodeBoth) {
		return errors.Wrapf(ErrMalformedRequest, "migration of %s VM %d to node %q", entry.Mode, m.VMID, m.Node)
	}

	hosted, err := e.fleet.Detach(entry.Server, m.VMID)
	if err != nil {
		return err
	}

	if err := e.fleet.Release(entry.Server, entry.Node, hosted.Demand); err != nil {
		return err
	}

	if !e.fleet.TryReserve(m.Server, m.Node, hosted.Demand) {
		if !e.fleet.TryReserve(entry.Server, entry.Node, hosted.Demand) {
			return errors.Wrapf(ErrBookkeeping, "VM %d cannot return to server %d", m.VMID, entry.Server)
		}

		if err := e.fleet.Attach(entry.Server, m.VMID, entry.Node, hosted.Demand); err != nil {
			return err
		}

		return errors.Wrapf(ErrMalformedRequest, "migration of VM %d: server %d node %s has no room", m.VMID, m.Server, m.Node)
	}

	if err := e.fleet.Attach(m.Server, m.VMID, m.Node, hosted.Demand); err != nil {
		return err
	}

	if _, err := e.registry.Unregister(m.VMID); err != nil {
		return err
	}

	entry.Server, entry.Node = m.Server, m.Node
	if err := e.registry.Register(entry); err != nil {
		return err
	}

	st.plan.Migrations = append(st.plan.Migrations, m)
	e.metrics.Migrations.Inc()
	st.log.V(2).Info("Migrated VM", "vm", m.VMID, "server", m.Server, "node", m.Node)

	return nil
}
