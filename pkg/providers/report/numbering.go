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

package report

import (
	"github.com/samber/lo"

	"github.com/sergelogvinov/fleet-planner/pkg/apis/v1alpha1"
)

// Numbering maps fleet indexes to the server ids of the text output. Servers
// bought on the same day get consecutive ids grouped by model, models in order
// of their first purchase that day.
type Numbering struct {
	ids map[int]int
}

func NewNumbering() *Numbering {
	return &Numbering{ids: map[int]int{}}
}

// Assign numbers the servers bought on the given day.
func (n *Numbering) Assign(day *v1alpha1.DayPlan) {
	byModel := lo.GroupBy(day.NewServers, func(s v1alpha1.ServerRef) string { return s.Model })

	for _, p := range day.Purchases {
		for _, s := range byModel[p.Model] {
			n.ids[s.Index] = len(n.ids)
		}
	}
}

// ID returns the output id of a server.
func (n *Numbering) ID(index int) (int, bool) {
	id, ok := n.ids[index]

	return id, ok
}
