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

package ledger

import (
	"fmt"

	"github.com/sergelogvinov/fleet-planner/pkg/apis/v1alpha1"
)

// DayCost is the cost booked on one day.
type DayCost struct {
	Day       int
	Purchase  int64
	Operating int64
}

// Ledger accumulates purchase and operating costs. Totals never decrease.
type Ledger struct {
	purchase  int64
	operating int64
	servers   int

	days []DayCost
}

func New() *Ledger {
	return &Ledger{}
}

// RecordPurchase books the purchase cost of a server bought on the given day.
func (l *Ledger) RecordPurchase(day int, model v1alpha1.ServerModel) {
	l.purchase += model.PurchaseCost
	l.servers++
	l.dayCost(day).Purchase += model.PurchaseCost
}

// AccrueDay books one day of operating cost for the whole fleet.
func (l *Ledger) AccrueDay(day int, dailyCost int64) {
	l.operating += dailyCost
	l.dayCost(day).Operating += dailyCost
}

func (l *Ledger) PurchaseCost() int64 {
	return l.purchase
}

func (l *Ledger) OperatingCost() int64 {
	return l.operating
}

// Total returns purchase plus operating cost.
func (l *Ledger) Total() int64 {
	return l.purchase + l.operating
}

// Servers returns the number of servers bought.
func (l *Ledger) Servers() int {
	return l.servers
}

// Days returns the cost booked per day.
func (l *Ledger) Days() []DayCost {
	return l.days
}

func (l *Ledger) String() string {
	return fmt.Sprintf("Purchase: %d, Operating: %d, Total: %d", l.purchase, l.operating, l.Total())
}

func (l *Ledger) dayCost(day int) *DayCost {
	if n := len(l.days); n > 0 && l.days[n-1].Day == day {
		return &l.days[n-1]
	}

	l.days = append(l.days, DayCost{Day: day})

	return &l.days[len(l.days)-1]
}
