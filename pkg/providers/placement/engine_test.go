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
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/sergelogvinov/fleet-planner/pkg/apis/v1alpha1"
	"github.com/sergelogvinov/fleet-planner/pkg/providers/catalog"
	"github.com/sergelogvinov/fleet-planner/pkg/providers/fleet"
	"github.com/sergelogvinov/fleet-planner/pkg/providers/placement"
	"github.com/sergelogvinov/fleet-planner/pkg/providers/registry"
	testCatalog "github.com/sergelogvinov/fleet-planner/test/catalog"

	"k8s.io/klog/v2/ktesting"
)

func newEngine(t *testing.T, servers []v1alpha1.ServerModel, opts ...placement.Option) (*placement.Engine, context.Context) {
	t.Helper()

	_, ctx := ktesting.NewTestContext(t)
	c := lo.Must(catalog.NewCatalog(servers, testCatalog.VMs, catalog.DefaultSettings()))

	return placement.NewEngine(ctx, c, append([]placement.Option{placement.WithInvariantChecks(true)}, opts...)...), ctx
}

func server(t *testing.T, e *placement.Engine, index int) *fleet.ServerInstance {
	t.Helper()

	s, err := e.Fleet().Server(index)
	require.NoError(t, err)

	return s
}

func TestSingleNodeLifecycle(t *testing.T) {
	t.Parallel()

	e, ctx := newEngine(t, testCatalog.ServersSingleModel)

	day1, err := e.ProcessDay(ctx, []v1alpha1.Operation{testCatalog.Add("V1", 1)})
	require.NoError(t, err)
	assert.Equal(t, []v1alpha1.Purchase{{Model: "M1", Count: 1}}, day1.Purchases)
	assert.Equal(t, []v1alpha1.Placement{{VMID: 1, Server: 0, Node: v1alpha1.NodeA}}, day1.Placements)
	assert.Equal(t, "M1 A: 0/0, B: 2/2", server(t, e, 0).Status())

	day2, err := e.ProcessDay(ctx, []v1alpha1.Operation{testCatalog.Add("V1", 2)})
	require.NoError(t, err)
	assert.Empty(t, day2.Purchases)
	assert.Equal(t, []v1alpha1.Placement{{VMID: 2, Server: 0, Node: v1alpha1.NodeB}}, day2.Placements)
	assert.Equal(t, "M1 A: 0/0, B: 0/0", server(t, e, 0).Status())

	day3, err := e.ProcessDay(ctx, []v1alpha1.Operation{testCatalog.Remove(1)})
	require.NoError(t, err)
	assert.Empty(t, day3.Purchases)
	assert.Empty(t, day3.Placements)
	assert.Equal(t, "M1 A: 2/2, B: 0/0", server(t, e, 0).Status())

	assert.False(t, e.Registry().Has(1))

	entry, ok := e.Registry().Get(2)
	require.True(t, ok)
	assert.Equal(t, registry.Entry{VMID: 2, VMType: "V1", Mode: v1alpha1.DeploymentSingle, Server: 0, Node: v1alpha1.NodeB}, entry)

	assert.Equal(t, 3, e.Day())
	assert.Equal(t, int64(100), e.Ledger().PurchaseCost())
	assert.Equal(t, int64(6), e.Ledger().OperatingCost())
	assert.Equal(t, v1alpha1.Summary{PurchaseCost: 100, OperatingCost: 6, TotalCost: 106, Servers: 1, PeakVMs: 2}, e.Summary())
}

func TestDualNodeAdmission(t *testing.T) {
	t.Parallel()

	e, ctx := newEngine(t, testCatalog.ServersSingleModel)

	day, err := e.ProcessDay(ctx, []v1alpha1.Operation{testCatalog.Add("V2", 3)})
	require.NoError(t, err)
	assert.Equal(t, []v1alpha1.Purchase{{Model: "M1", Count: 1}}, day.Purchases)
	assert.Equal(t, []v1alpha1.Placement{{VMID: 3, Server: 0, Node: v1alpha1.NodeBoth}}, day.Placements)

	s := server(t, e, 0)
	assert.Equal(t, "M1 A: 0/0, B: 0/0", s.Status())
	assert.Equal(t, []int{3}, s.Hosted(v1alpha1.NodeA))
	assert.Equal(t, []int{3}, s.Hosted(v1alpha1.NodeB))

	_, err = e.ProcessDay(ctx, []v1alpha1.Operation{testCatalog.Remove(3)})
	require.NoError(t, err)
	assert.Equal(t, "M1 A: 2/2, B: 2/2", s.Status())
}

func TestInfeasibleDemand(t *testing.T) {
	t.Parallel()

	e, ctx := newEngine(t, testCatalog.ServersSingleModel)

	day, err := e.ProcessDay(ctx, []v1alpha1.Operation{
		testCatalog.Add("V1", 1),
		testCatalog.Add("huge", 2),
	})
	require.Error(t, err)
	assert.Nil(t, day)
	assert.True(t, errors.Is(err, placement.ErrInfeasible), "got %v", err)

	assert.Equal(t, 0, e.Fleet().Len())
	assert.Equal(t, 0, e.Registry().Len())
	assert.Equal(t, 0, e.Day())
	assert.Equal(t, 1, e.Frontier().Limit())
	assert.Equal(t, int64(0), e.Ledger().Total())
}

func TestMalformedBatch(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		ops    []v1alpha1.Operation
		errors int
	}{
		{
			name:   "add of a live id",
			ops:    []v1alpha1.Operation{testCatalog.Add("V1", 1)},
			errors: 1,
		},
		{
			name:   "duplicate add in one batch",
			ops:    []v1alpha1.Operation{testCatalog.Add("V1", 5), testCatalog.Add("V2", 5)},
			errors: 1,
		},
		{
			name:   "unknown vm type",
			ops:    []v1alpha1.Operation{testCatalog.Add("V9", 5)},
			errors: 1,
		},
		{
			name:   "remove of an unknown id",
			ops:    []v1alpha1.Operation{testCatalog.Remove(7)},
			errors: 1,
		},
		{
			name:   "remove twice",
			ops:    []v1alpha1.Operation{testCatalog.Remove(1), testCatalog.Remove(1)},
			errors: 1,
		},
		{
			name: "every problem is reported",
			ops: []v1alpha1.Operation{
				testCatalog.Add("V1", 1),
				testCatalog.Add("V9", 5),
				testCatalog.Remove(7),
			},
			errors: 3,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			e, ctx := newEngine(t, testCatalog.ServersSingleModel)

			_, err := e.ProcessDay(ctx, []v1alpha1.Operation{testCatalog.Add("V1", 1)})
			require.NoError(t, err)

			status, cost := e.Fleet().Status(), e.Ledger().Total()

			_, err = e.ProcessDay(ctx, testCase.ops)
			require.Error(t, err)
			assert.True(t, errors.Is(err, placement.ErrMalformedRequest), "got %v", err)
			assert.Len(t, multierr.Errors(errors.Unwrap(err)), testCase.errors)

			assert.Equal(t, status, e.Fleet().Status())
			assert.Equal(t, cost, e.Ledger().Total())
			assert.Equal(t, 1, e.Registry().Len())
			assert.Equal(t, 1, e.Day())
		})
	}
}

func TestProcessingOrder(t *testing.T) {
	t.Parallel()

	e, ctx := newEngine(t, testCatalog.ServersSingleModel)

	// The dual VM arrives second but is placed first and takes server 0.
	day1, err := e.ProcessDay(ctx, []v1alpha1.Operation{
		testCatalog.Add("V1", 1),
		testCatalog.Add("V2", 2),
	})
	require.NoError(t, err)
	assert.Equal(t, []v1alpha1.Placement{
		{VMID: 1, Server: 1, Node: v1alpha1.NodeA},
		{VMID: 2, Server: 0, Node: v1alpha1.NodeBoth},
	}, day1.Placements)
	assert.Equal(t, []v1alpha1.Purchase{{Model: "M1", Count: 2}}, day1.Purchases)

	// A remove never frees room for an add of the same day.
	day2, err := e.ProcessDay(ctx, []v1alpha1.Operation{
		testCatalog.Remove(2),
		testCatalog.Add("V2", 3),
	})
	require.NoError(t, err)
	assert.Equal(t, []v1alpha1.ServerRef{{Index: 2, Model: "M1"}}, day2.NewServers)
	assert.Equal(t, []v1alpha1.Placement{{VMID: 3, Server: 2, Node: v1alpha1.NodeBoth}}, day2.Placements)
	assert.Equal(t, "0(M1 A: 2/2, B: 2/2), 1(M1 A: 0/0, B: 2/2), 2(M1 A: 0/0, B: 0/0)", e.Fleet().Status())
}

func TestRecyclingRoundTrip(t *testing.T) {
	t.Parallel()

	e, ctx := newEngine(t, testCatalog.ServersTiered)

	_, err := e.ProcessDay(ctx, []v1alpha1.Operation{testCatalog.Add("V3", 1)})
	require.NoError(t, err)

	before := e.Fleet().Status()

	day, err := e.ProcessDay(ctx, []v1alpha1.Operation{
		testCatalog.Add("V1", 2),
		testCatalog.Remove(2),
	})
	require.NoError(t, err)
	assert.Equal(t, []v1alpha1.Placement{{VMID: 2, Server: 0, Node: v1alpha1.NodeB}}, day.Placements)
	assert.Equal(t, before, e.Fleet().Status())
	assert.False(t, e.Registry().Has(2))
	assert.Equal(t, 2, e.Registry().Peak())
}

func TestFrontierGrowsWithDemand(t *testing.T) {
	t.Parallel()

	e, ctx := newEngine(t, testCatalog.ServersTiered)

	plan, err := e.Run(ctx, [][]v1alpha1.Operation{
		{testCatalog.Add("V1", 1)},
		{testCatalog.Add("big", 2)},
		{testCatalog.Add("V3", 3)},
	})
	require.NoError(t, err)

	assert.Equal(t, []v1alpha1.ServerRef{{Index: 0, Model: "S"}}, plan.Days[0].NewServers)
	assert.Equal(t, []v1alpha1.ServerRef{{Index: 1, Model: "L"}}, plan.Days[1].NewServers)
	assert.Empty(t, plan.Days[2].NewServers)
	assert.Equal(t, []v1alpha1.Placement{{VMID: 3, Server: 0, Node: v1alpha1.NodeB}}, plan.Days[2].Placements)
	assert.Equal(t, 3, e.Frontier().Limit())

	assert.Equal(t, int64(100+560), plan.Summary.PurchaseCost)
	assert.Equal(t, int64(2+10+10), plan.Summary.OperatingCost)
}

func TestFrontierAfterForwardScan(t *testing.T) {
	t.Parallel()

	// Ranked by daily cost per CPU: tiny, small, wide, compact.
	c := lo.Must(catalog.NewCatalog([]v1alpha1.ServerModel{
		{Name: "compact", CPU: 8, Memory: 8, PurchaseCost: 100, DailyCost: 20},
		{Name: "wide", CPU: 20, Memory: 20, PurchaseCost: 500, DailyCost: 30},
		{Name: "small", CPU: 2, Memory: 2, PurchaseCost: 1001, DailyCost: 2},
		{Name: "tiny", CPU: 2, Memory: 2, PurchaseCost: 1000, DailyCost: 1},
	}, testCatalog.VMs, catalog.Settings{DailyCPUWeight: 1}))

	require.Equal(t, []string{"tiny", "small", "wide", "compact"},
		lo.Map(c.Servers(), func(s catalog.ServerEntry, _ int) string { return s.Name }))

	_, ctx := ktesting.NewTestContext(t)
	e := placement.NewEngine(ctx, c, placement.WithInvariantChecks(true))

	plan, err := e.Run(ctx, [][]v1alpha1.Operation{
		{testCatalog.Add("huge", 1)},
		{testCatalog.Add("huge", 2)},
		{testCatalog.Add("V1", 3)},
	})
	require.NoError(t, err)

	// The forward scan stops at "wide", so "compact" is not offered on day 3.
	assert.Equal(t, []v1alpha1.ServerRef{{Index: 0, Model: "wide"}}, plan.Days[0].NewServers)
	assert.Empty(t, plan.Days[1].NewServers)
	assert.Equal(t, []v1alpha1.ServerRef{{Index: 1, Model: "wide"}}, plan.Days[2].NewServers)
	assert.Equal(t, 3, e.Frontier().Limit())
}

func randomTimeline(seed uint64, days int) [][]v1alpha1.Operation {
	rnd := rand.New(rand.NewPCG(seed, seed))
	types := []string{"V1", "V2", "V3", "big", "bigdual"}

	timeline := make([][]v1alpha1.Operation, 0, days)
	live := []int{}
	next := 1

	for range days {
		ops := []v1alpha1.Operation{}

		for range rnd.IntN(6) + 1 {
			ops = append(ops, testCatalog.Add(types[rnd.IntN(len(types))], next))
			live = append(live, next)
			next++
		}

		for range rnd.IntN(4) {
			if len(live) == 0 {
				break
			}

			i := rnd.IntN(len(live))
			ops = append(ops, testCatalog.Remove(live[i]))
			live = append(live[:i], live[i+1:]...)
		}

		rnd.Shuffle(len(ops), func(i, j int) {
			_, iAdd := ops[i].(v1alpha1.AddOperation)
			_, jAdd := ops[j].(v1alpha1.AddOperation)

			// Keep removes after the add of the same id.
			if iAdd == jAdd {
				ops[i], ops[j] = ops[j], ops[i]
			}
		})

		timeline = append(timeline, ops)
	}

	return timeline
}

func TestCapacityConservation(t *testing.T) {
	t.Parallel()

	e, ctx := newEngine(t, testCatalog.ServersTiered)

	limit := e.Frontier().Limit()

	for i, ops := range randomTimeline(42, 60) {
		_, err := e.ProcessDay(ctx, ops)
		require.NoError(t, err, "day %d", i+1)

		require.NoError(t, e.Fleet().CheckInvariants())

		assert.GreaterOrEqual(t, e.Frontier().Limit(), limit)
		limit = e.Frontier().Limit()

		demand := v1alpha1.Resources{}

		for _, entry := range e.Registry().Entries() {
			vm := lo.Must(e.Catalog().VM(entry.VMType))

			hosted, ok := server(t, e, entry.Server).HostedVM(entry.VMID)
			require.True(t, ok, "VM %d", entry.VMID)
			assert.Equal(t, entry.Node, hosted.Node)

			demand = demand.Add(vm.Demand())
		}

		used := v1alpha1.Resources{}

		for _, s := range e.Fleet().Servers() {
			for _, node := range v1alpha1.Nodes {
				used = used.Add(s.Model.NodeCapacity.Sub(s.Free(node)))
			}
		}

		assert.Equal(t, demand, used, "day %d", i+1)
	}
}

func TestDeterminism(t *testing.T) {
	t.Parallel()

	timeline := randomTimeline(7, 30)

	e1, ctx1 := newEngine(t, testCatalog.ServersTiered)
	plan1, err := e1.Run(ctx1, timeline)
	require.NoError(t, err)

	e2, ctx2 := newEngine(t, testCatalog.ServersTiered)
	plan2, err := e2.Run(ctx2, timeline)
	require.NoError(t, err)

	assert.NotEqual(t, plan1.RunID, plan2.RunID)
	assert.Equal(t, plan1.Hash(), plan2.Hash())

	if diff := cmp.Diff(plan1.Days, plan2.Days); diff != "" {
		t.Errorf("plans differ (-first +second):\n%s", diff)
	}
}

func TestRunWithRunID(t *testing.T) {
	t.Parallel()

	e, ctx := newEngine(t, testCatalog.ServersSingleModel, placement.WithRunID("run-1"))

	plan, err := e.Run(ctx, [][]v1alpha1.Operation{{testCatalog.Add("V1", 1)}})
	require.NoError(t, err)
	assert.Equal(t, "run-1", plan.RunID)
}

func TestRunStopsOnRejectedDay(t *testing.T) {
	t.Parallel()

	e, ctx := newEngine(t, testCatalog.ServersSingleModel)

	plan, err := e.Run(ctx, [][]v1alpha1.Operation{
		{testCatalog.Add("V1", 1)},
		{testCatalog.Remove(2)},
		{testCatalog.Add("V1", 3)},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, placement.ErrMalformedRequest))
	assert.Len(t, plan.Days, 1)
	assert.Equal(t, int64(102), plan.Summary.TotalCost)
}
