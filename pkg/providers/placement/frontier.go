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
	"math"

	"github.com/pkg/errors"

	"github.com/sergelogvinov/fleet-planner/pkg/apis/v1alpha1"
	"github.com/sergelogvinov/fleet-planner/pkg/providers/catalog"
)

// Frontier is the purchase-selection policy. It tracks how many of the best ranked
// server models the engine is willing to buy. The limit only grows.
type Frontier struct {
	limit int
}

// NewFrontier returns a frontier offering the first model of the catalog.
func NewFrontier() *Frontier {
	return &Frontier{limit: 1}
}

// Limit returns the number of models currently offered.
func (f *Frontier) Limit() int {
	return f.limit
}

// Select returns the rank of the model to buy for a per-node demand on the given day.
//
// Each call offers one more model. Among the offered models the one with the lowest
// dynamic cost wins, earlier rank on ties. If its nodes are too small, the catalog is
// scanned forward for the first model that fits and the limit is raised to its rank,
// so the next call offers it as well.
// The limit is left untouched when nothing fits.
func (f *Frontier) Select(c *catalog.Catalog, day int, demand v1alpha1.Resources) (int, error) {
	n := c.Len()
	if n == 0 {
		return 0, errors.Wrap(ErrInfeasible, "empty catalog")
	}

	limit := min(f.limit+1, n)

	best, bestCost := 0, int64(math.MaxInt64)

	for i := range limit {
		if cost := c.Server(i).DynamicCost(day); cost < bestCost {
			best, bestCost = i, cost
		}
	}

	if fits(c, best, demand) {
		f.limit = limit

		return best, nil
	}

	for i := best + 1; i < n; i++ {
		if fits(c, i, demand) {
			f.limit = max(limit, i)

			return i, nil
		}
	}

	// Nothing after the cheapest offered model fits, fall back to the better ranked ones.
	for i := range best {
		if fits(c, i, demand) {
			f.limit = limit

			return i, nil
		}
	}

	return 0, errors.Wrapf(ErrInfeasible, "per-node demand %s", demand)
}

func fits(c *catalog.Catalog, i int, demand v1alpha1.Resources) bool {
	return demand.Fits(c.Server(i).NodeCapacity)
}
