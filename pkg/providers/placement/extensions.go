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

	"github.com/sergelogvinov/fleet-planner/pkg/apis/v1alpha1"
	"github.com/sergelogvinov/fleet-planner/pkg/providers/fleet"
	"github.com/sergelogvinov/fleet-planner/pkg/providers/registry"
)

// Expander may buy servers ahead of demand once a day batch is applied.
type Expander interface {
	// Expand returns the names of the server models to buy.
	Expand(ctx context.Context, day int, f *fleet.Fleet) ([]string, error)
}

// Migrator may move live VMs once a day batch is applied.
type Migrator interface {
	// Migrate returns the moves to apply, in order. Dual VMs must target NodeBoth.
	Migrate(ctx context.Context, day int, f *fleet.Fleet, r *registry.Registry) ([]v1alpha1.Migration, error)
}

// NoopExpander never buys ahead of demand.
type NoopExpander struct{}

func (NoopExpander) Expand(context.Context, int, *fleet.Fleet) ([]string, error) {
	return nil, nil
}

// NoopMigrator never moves VMs.
type NoopMigrator struct{}

func (NoopMigrator) Migrate(context.Context, int, *fleet.Fleet, *registry.Registry) ([]v1alpha1.Migration, error) {
	return nil, nil
}
