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

package v1alpha1

import (
	"fmt"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/samber/lo"
)

// Purchase is the number of servers of one model bought on a day.
type Purchase struct {
	Model string `json:"model" yaml:"model"`
	Count int    `json:"count" yaml:"count"`
}

// ServerRef points at a server of the fleet by its purchase order index.
type ServerRef struct {
	Index int    `json:"index" yaml:"index"`
	Model string `json:"model" yaml:"model"`
}

// Placement records where an admitted VM landed.
type Placement struct {
	VMID int `json:"vmId" yaml:"vmId"`
	// Server is the purchase order index of the hosting server.
	Server int `json:"server" yaml:"server"`
	// Node is NodeA or NodeB for single deployments and NodeBoth for dual ones.
	Node NodeID `json:"node" yaml:"node"`
}

// Migration records a VM moved to another server or node.
type Migration struct {
	VMID   int    `json:"vmId" yaml:"vmId"`
	Server int    `json:"server" yaml:"server"`
	Node   NodeID `json:"node" yaml:"node"`
}

// DayPlan is the outcome of one day of the timeline.
type DayPlan struct {
	// Day is 1-based.
	Day int `json:"day" yaml:"day"`
	// Purchases groups the servers bought that day by model, in order of first purchase.
	Purchases []Purchase `json:"purchases" yaml:"purchases"`
	// NewServers lists the servers bought that day in purchase order.
	NewServers []ServerRef `json:"newServers" yaml:"newServers"`
	Migrations []Migration `json:"migrations" yaml:"migrations"`
	// Placements follows the arrival order of the Add requests.
	Placements []Placement `json:"placements" yaml:"placements"`
}

// PurchasedCount returns the number of servers bought that day.
func (d *DayPlan) PurchasedCount() int {
	return lo.SumBy(d.Purchases, func(p Purchase) int { return p.Count })
}

// Summary holds the totals of a run.
type Summary struct {
	PurchaseCost  int64 `json:"purchaseCost" yaml:"purchaseCost"`
	OperatingCost int64 `json:"operatingCost" yaml:"operatingCost"`
	TotalCost     int64 `json:"totalCost" yaml:"totalCost"`
	Servers       int   `json:"servers" yaml:"servers"`
	PeakVMs       int   `json:"peakVMs" yaml:"peakVMs"`
}

// Plan is the full purchase and placement plan of a run.
type Plan struct {
	RunID   string    `json:"runId" yaml:"runId" hash:"ignore"`
	Days    []DayPlan `json:"days" yaml:"days"`
	Summary Summary   `json:"summary" yaml:"summary"`
}

// Hash returns a fingerprint of the plan decisions. The run id is not part of it,
// so two runs over the same input produce the same hash.
func (p *Plan) Hash() string {
	return fmt.Sprint(lo.Must(hashstructure.Hash(p, hashstructure.FormatV2, &hashstructure.HashOptions{
		ZeroNil: true,
	})))
}
