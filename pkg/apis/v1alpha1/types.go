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

import "fmt"

// DeploymentMode describes how the demand of a VM is spread over the nodes of a server.
type DeploymentMode string

const (
	// DeploymentSingle places the whole demand on one node.
	DeploymentSingle DeploymentMode = "Single"
	// DeploymentDual splits the demand in half, one half on each node of the same server.
	DeploymentDual DeploymentMode = "Dual"
)

// NodeID identifies one of the two resource pools of a server.
type NodeID string

const (
	NodeA NodeID = "A"
	NodeB NodeID = "B"
	// NodeBoth marks a dual deployment which holds a slice of both nodes.
	NodeBoth NodeID = "AB"
)

// Nodes lists the nodes of a server in scan order.
var Nodes = []NodeID{NodeA, NodeB}

// Resources is an amount of CPU cores and memory.
type Resources struct {
	CPU    int `json:"cpu"`
	Memory int `json:"memory"`
}

// Fits reports whether r can be carved out of available.
func (r Resources) Fits(available Resources) bool {
	return r.CPU <= available.CPU && r.Memory <= available.Memory
}

func (r Resources) Add(o Resources) Resources {
	return Resources{CPU: r.CPU + o.CPU, Memory: r.Memory + o.Memory}
}

func (r Resources) Sub(o Resources) Resources {
	return Resources{CPU: r.CPU - o.CPU, Memory: r.Memory - o.Memory}
}

// Half returns the per-node share of a dual deployment.
func (r Resources) Half() Resources {
	return Resources{CPU: r.CPU / 2, Memory: r.Memory / 2}
}

func (r Resources) IsZero() bool {
	return r.CPU == 0 && r.Memory == 0
}

func (r Resources) String() string {
	return fmt.Sprintf("%d/%d", r.CPU, r.Memory)
}

// ServerModel is a purchasable server as listed in the catalog.
type ServerModel struct {
	// Name is the model identifier, e.g. hostUY41I.
	Name string `json:"name"`
	// CPU is the total number of cores of both nodes.
	CPU int `json:"cpu"`
	// Memory is the total memory of both nodes.
	Memory int `json:"memory"`
	// PurchaseCost is paid once, on the day the server is bought.
	PurchaseCost int64 `json:"purchaseCost"`
	// DailyCost is paid for every day the server is owned, including the purchase day.
	DailyCost int64 `json:"dailyCost"`
}

// Capacity returns the total capacity of the model.
func (m ServerModel) Capacity() Resources {
	return Resources{CPU: m.CPU, Memory: m.Memory}
}

// NodeCapacity returns the capacity of a single node. Both nodes get the same share.
func (m ServerModel) NodeCapacity() Resources {
	return m.Capacity().Half()
}

// DynamicCost is the purchase price plus operating cost accrued through the given day.
func (m ServerModel) DynamicCost(day int) int64 {
	return m.PurchaseCost + m.DailyCost*int64(day)
}

// VMModel is a VM type as listed in the catalog.
type VMModel struct {
	Name   string         `json:"name"`
	CPU    int            `json:"cpu"`
	Memory int            `json:"memory"`
	Mode   DeploymentMode `json:"mode"`
}

// Demand returns the total demand of the VM.
func (m VMModel) Demand() Resources {
	return Resources{CPU: m.CPU, Memory: m.Memory}
}

// NodeDemand returns the demand placed on each node the VM occupies.
func (m VMModel) NodeDemand() Resources {
	if m.Mode == DeploymentDual {
		return m.Demand().Half()
	}

	return m.Demand()
}
