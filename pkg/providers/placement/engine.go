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

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/sergelogvinov/fleet-planner/pkg/apis/v1alpha1"
	"github.com/sergelogvinov/fleet-planner/pkg/providers/catalog"
	"github.com/sergelogvinov/fleet-planner/pkg/providers/fleet"
	"github.com/sergelogvinov/fleet-planner/pkg/providers/ledger"
	"github.com/sergelogvinov/fleet-planner/pkg/providers/registry"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

// ErrBookkeeping is returned when the free capacity of a node no longer matches
// the VMs it hosts.
var ErrBookkeeping = errors.New("capacity bookkeeping violation")

// Engine applies the request timeline one day at a time. It owns the fleet,
// the live VM registry and the cost ledger, and is not safe for concurrent use.
type Engine struct {
	catalog  *catalog.Catalog
	fleet    *fleet.Fleet
	registry *registry.Registry
	ledger   *ledger.Ledger
	frontier *Frontier

	expander        Expander
	migrator        Migrator
	metrics         *Metrics
	checkInvariants bool

	runID string
	day   int
	log   logr.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithExpander sets the expander called at the end of every day.
func WithExpander(x Expander) Option {
	return func(e *Engine) {
		e.expander = x
	}
}

// WithMigrator sets the migrator called at the end of every day.
func WithMigrator(m Migrator) Option {
	return func(e *Engine) {
		e.migrator = m
	}
}

// WithMetrics sets the metrics the engine reports to.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithRunID sets the run id of the plans built by Run. The caller is expected to have
// tagged the context logger with it already.
func WithRunID(id string) Option {
	return func(e *Engine) {
		e.runID = id
	}
}

// WithInvariantChecks verifies the capacity books of every server at the end of every day.
func WithInvariantChecks(enabled bool) Option {
	return func(e *Engine) {
		e.checkInvariants = enabled
	}
}

// NewEngine returns an engine with an empty fleet. The logger is taken from ctx.
func NewEngine(ctx context.Context, c *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:  c,
		fleet:    fleet.New(),
		registry: registry.New(),
		ledger:   ledger.New(),
		frontier: NewFrontier(),
		expander: NoopExpander{},
		migrator: NoopMigrator{},
		log:      log.FromContext(ctx).WithName("placement"),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.metrics == nil {
		e.metrics = NewMetrics(nil)
	}

	e.metrics.Frontier.Set(float64(e.frontier.Limit()))

	return e
}

func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

func (e *Engine) Fleet() *fleet.Fleet {
	return e.fleet
}

func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

func (e *Engine) Ledger() *ledger.Ledger {
	return e.ledger
}

func (e *Engine) Frontier() *Frontier {
	return e.frontier
}

// Day returns the number of days applied so far.
func (e *Engine) Day() int {
	return e.day
}

// Run applies every day of the timeline and returns the plan. On error the plan
// holds the days applied before the failing one.
func (e *Engine) Run(ctx context.Context, days [][]v1alpha1.Operation) (*v1alpha1.Plan, error) {
	plan := &v1alpha1.Plan{
		RunID: e.runID,
		Days:  make([]v1alpha1.DayPlan, 0, len(days)),
	}

	logger := e.log
	if plan.RunID == "" {
		plan.RunID = uuid.NewString()
		logger = logger.WithValues("runID", plan.RunID)
	}
	logger.V(1).Info("Starting run", "days", len(days), "catalog", e.catalog.Hash())

	for _, ops := range days {
		dp, err := e.ProcessDay(ctx, ops)
		if err != nil {
			plan.Summary = e.Summary()

			return plan, err
		}

		plan.Days = append(plan.Days, *dp)
	}

	plan.Summary = e.Summary()

	logger.Info("Run finished", "servers", plan.Summary.Servers, "peakVMs", plan.Summary.PeakVMs,
		"cost", e.ledger.String(), "plan", plan.Hash())

	return plan, nil
}

// ProcessDay applies one day batch: dual adds, then single adds, then removes, each in arrival order.
// A batch with a malformed or infeasible request is rejected as a whole and changes nothing.
func (e *Engine) ProcessDay(ctx context.Context, ops []v1alpha1.Operation) (*v1alpha1.DayPlan, error) {
	day := e.day + 1
	logger := e.log.WithValues("day", day)

	b, err := e.partition(ops)
	if err = multierr.Append(err, e.validate(b)); err != nil {
		e.metrics.RejectedBatches.Inc()
		logger.Error(err, "Rejected day batch", "requests", len(ops))

		return nil, fmt.Errorf("day %d: %w", day, err)
	}

	st := &dayState{
		plan:       &v1alpha1.DayPlan{Day: day},
		placements: make(map[int]v1alpha1.Placement, len(b.arrival)),
		log:        logger,
	}

	for _, a := range b.dual {
		if err := e.admitDual(st, a); err != nil {
			return nil, fmt.Errorf("day %d: %w", day, err)
		}
	}

	for _, a := range b.single {
		if err := e.admitSingle(st, a); err != nil {
			return nil, fmt.Errorf("day %d: %w", day, err)
		}
	}

	for _, r := range b.removes {
		if err := e.remove(st, r); err != nil {
			return nil, fmt.Errorf("day %d: %w", day, err)
		}
	}

	if err := e.extend(ctx, st); err != nil {
		return nil, fmt.Errorf("day %d: %w", day, err)
	}

	e.ledger.AccrueDay(day, e.fleet.DailyCost())

	if e.checkInvariants {
		if err := e.fleet.CheckInvariants(); err != nil {
			return nil, fmt.Errorf("day %d: %w", day, errors.Wrap(ErrBookkeeping, err.Error()))
		}
	}

	st.plan.Purchases = groupPurchases(st.plan.NewServers)
	st.plan.Placements = lo.Map(b.arrival, func(id int, _ int) v1alpha1.Placement {
		return st.placements[id]
	})

	e.day = day
	e.observe()

	logger.V(1).Info("Day processed",
		"purchased", len(st.plan.NewServers), "placed", len(b.arrival), "removed", len(b.removes),
		"migrated", len(st.plan.Migrations), "servers", e.fleet.Len(), "liveVMs", e.registry.Len(),
		"frontier", e.frontier.Limit(), "cost", e.ledger.Total())

	return st.plan, nil
}

// Summary returns the totals of the days applied so far.
func (e *Engine) Summary() v1alpha1.Summary {
	return v1alpha1.Summary{
		PurchaseCost:  e.ledger.PurchaseCost(),
		OperatingCost: e.ledger.OperatingCost(),
		TotalCost:     e.ledger.Total(),
		Servers:       e.fleet.Len(),
		PeakVMs:       e.registry.Peak(),
	}
}

func (e *Engine) observe() {
	e.metrics.Days.Inc()
	e.metrics.Frontier.Set(float64(e.frontier.Limit()))
	e.metrics.Servers.Set(float64(e.fleet.Len()))
	e.metrics.LiveVMs.Set(float64(e.registry.Len()))
	e.metrics.TotalCost.Set(float64(e.ledger.Total()))
}

// dayState collects the decisions of the day being applied.
type dayState struct {
	plan       *v1alpha1.DayPlan
	placements map[int]v1alpha1.Placement
	log        logr.Logger
}

// groupPurchases counts the servers bought per model, models in order of first purchase.
func groupPurchases(servers []v1alpha1.ServerRef) []v1alpha1.Purchase {
	counts := lo.CountValuesBy(servers, func(s v1alpha1.ServerRef) string { return s.Model })

	return lo.Map(lo.Uniq(lo.Map(servers, func(s v1alpha1.ServerRef, _ int) string { return s.Model })),
		func(model string, _ int) v1alpha1.Purchase {
			return v1alpha1.Purchase{Model: model, Count: counts[model]}
		})
}
