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

// Operation is a single request of the daily stream. It is either an AddOperation or a RemoveOperation.
type Operation interface {
	// VMID returns the VM the request refers to.
	VMID() int

	isOperation()
}

// AddOperation requests a new VM of the given type.
type AddOperation struct {
	VMType string
	ID     int
}

// RemoveOperation releases a live VM.
type RemoveOperation struct {
	ID int
}

var (
	_ Operation = AddOperation{}
	_ Operation = RemoveOperation{}
)

func (o AddOperation) VMID() int { return o.ID }

func (AddOperation) isOperation() {}

func (o AddOperation) String() string {
	return fmt.Sprintf("(add, %s, %d)", o.VMType, o.ID)
}

func (o RemoveOperation) VMID() int { return o.ID }

func (RemoveOperation) isOperation() {}

func (o RemoveOperation) String() string {
	return fmt.Sprintf("(del, %d)", o.ID)
}

// Scenario is everything a run needs: the catalog and the request timeline.
type Scenario struct {
	Servers []ServerModel
	VMs     []VMModel
	// Days holds the requests of each day in arrival order. Days[0] is day 1.
	Days [][]Operation
}
