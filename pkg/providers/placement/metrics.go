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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "fleet_planner"

// Metrics holds the placement engine's Prometheus collectors: day and batch counters,
// purchase, admission, removal and migration counters, and gauges for the fleet state.
type Metrics struct {
	Days            prometheus.Counter
	RejectedBatches prometheus.Counter

	Purchases  *prometheus.CounterVec
	Admissions *prometheus.CounterVec
	Removals   prometheus.Counter
	Migrations prometheus.Counter

	RefusedMigrations prometheus.Counter

	Frontier  prometheus.Gauge
	Servers   prometheus.Gauge
	LiveVMs   prometheus.Gauge
	TotalCost prometheus.Gauge
}

// NewMetrics creates the engine metrics and registers them with reg. A nil registerer
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Days: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "days_processed_total",
			Help:      "Number of day batches applied.",
		}),
		RejectedBatches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rejected_batches_total",
			Help:      "Number of day batches rejected before any change.",
		}),
		Purchases: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "servers_purchased_total",
			Help:      "Number of servers bought, by model.",
		}, []string{"model"}),
		Admissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "vm_admissions_total",
			Help:      "Number of VMs placed, by deployment mode and whether a purchase was needed.",
		}, []string{"mode", "purchased"}),
		Removals: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "vm_removals_total",
			Help:      "Number of VMs removed.",
		}),
		Migrations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "vm_migrations_total",
			Help:      "Number of VMs moved by the migrator.",
		}),
		RefusedMigrations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "vm_migrations_refused_total",
			Help:      "Number of moves proposed by the migrator that the engine refused.",
		}),
		Frontier: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "purchase_frontier",
			Help:      "Number of ranked server models offered for purchase.",
		}),
		Servers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "servers",
			Help:      "Number of servers in the fleet.",
		}),
		LiveVMs: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "live_vms",
			Help:      "Number of live VMs.",
		}),
		TotalCost: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "total_cost",
			Help:      "Purchase plus operating cost booked so far.",
		}),
	}
}
