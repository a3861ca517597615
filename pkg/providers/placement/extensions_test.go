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

package placement_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sergelogvinov/fleet-planner/pkg/apis/v1alpha1"
	"github.com/sergelogvinov/fleet-planner/pkg/providers/fleet"
	"github.com/sergelogvinov/fleet-planner/pkg/providers/placement"
	"github.com/sergelogvinov/fleet-planner/pkg/providers/registry"
	testCatalog "github.com/sergelogvinov/fleet-planner/test/catalog"
)

type fakeExpander map[int][]string

func (x fakeExpander) Expand(_ context.Context, day int, _ *fleet.Fleet) ([]string, error) {
	return x[day], nil
}

type fakeMigrator map[int][]v1alpha1.Migration

func (m fakeMigrator) Migrate(_ context.Context, day int, _ *fleet.Fleet, _ *registry.Registry) ([]v1alpha1.Migration, error) {
	return m[day], nil
}

func TestExtensions(t *testing.T) {
	t.Parallel()

	e, ctx := newEngine(t, testCatalog.ServersTiered,
		placement.WithExpander(fakeExpander{1: {"L"}}),
		placement.WithMigrator(fakeMigrator{2: {{VMID: 1, Server: 1, Node: v1alpha1.NodeB}}}),
	)

	day1, err := e.ProcessDay(ctx, []v1alpha1.Operation{testCatalog.Add("V1", 1)})
	require.NoError(t, err)
	assert.Equal(t, []v1alpha1.Purchase{{Model: "S", Count: 1}, {Model: "L", Count: 1}}, day1.Purchases)
	assert.Empty(t, day1.Migrations)

	day2, err := e.ProcessDay(ctx, []v1alpha1.Operation{testCatalog.Add("V3", 2)})
	require.NoError(t, err)
	assert.Equal(t, []v1alpha1.Placement{{VMID: 2, Server: 0, Node: v1alpha1.NodeB}}, day2.Placements)
	assert.Equal(t, []v1alpha1.Migration{{VMID: 1, Server: 1, Node: v1alpha1.NodeB}}, day2.Migrations)

	entry, ok := e.Registry().Get(1)
	require.True(t, ok)
	assert.Equal(t, 1, entry.Server)
	assert.Equal(t, v1alpha1.NodeB, entry.Node)

	assert.Equal(t, "0(S A: 2/2, B: 1/1), 1(L A: 8/8, B: 6/6)", e.Fleet().Status())
	assert.Equal(t, int64(100+560), e.Ledger().PurchaseCost())
}

func TestMigrationRefused(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		migration v1alpha1.Migration
	}{
		{
			name:      "dual VM to one node",
			migration: v1alpha1.Migration{VMID: 2, Server: 0, Node: v1alpha1.NodeA},
		},
		{
			name:      "single VM to both nodes",
			migration: v1alpha1.Migration{VMID: 1, Server: 0, Node: v1alpha1.NodeBoth},
		},
		{
			name:      "not live",
			migration: v1alpha1.Migration{VMID: 9, Server: 0, Node: v1alpha1.NodeA},
		},
		{
			name:      "no room",
			migration: v1alpha1.Migration{VMID: 1, Server: 0, Node: v1alpha1.NodeB},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			metrics := placement.NewMetrics(nil)
			e, ctx := newEngine(t, testCatalog.ServersSingleModel,
				placement.WithMigrator(fakeMigrator{2: {testCase.migration}}),
				placement.WithMetrics(metrics),
			)

			// Server 0 hosts the dual VM 2, server 1 hosts VM 1 on node A.
			_, err := e.ProcessDay(ctx, []v1alpha1.Operation{testCatalog.Add("V1", 1), testCatalog.Add("V2", 2)})
			require.NoError(t, err)

			// The refused move is skipped and the rest of the day still applies.
			day, err := e.ProcessDay(ctx, []v1alpha1.Operation{testCatalog.Add("V1", 3)})
			require.NoError(t, err)
			assert.Empty(t, day.Migrations)
			assert.Equal(t, []v1alpha1.Placement{{VMID: 3, Server: 1, Node: v1alpha1.NodeB}}, day.Placements)
			assert.Equal(t, 2, e.Day())
			assert.Equal(t, int64(200+2*2+2*2), e.Ledger().Total())
			assert.InDelta(t, 1, testutil.ToFloat64(metrics.RefusedMigrations), 0)
			assert.InDelta(t, 0, testutil.ToFloat64(metrics.Migrations), 0)

			entry, ok := e.Registry().Get(1)
			require.True(t, ok)
			assert.Equal(t, 1, entry.Server)
			assert.Equal(t, v1alpha1.NodeA, entry.Node)

			assert.Equal(t, "0(M1 A: 0/0, B: 0/0), 1(M1 A: 0/0, B: 0/0)", e.Fleet().Status())
			assert.NoError(t, e.Fleet().CheckInvariants())
		})
	}
}
