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

package nodemanager

import (
	"github.com/pkg/errors"

	"github.com/sergelogvinov/fleet-planner/pkg/apis/v1alpha1"
)

type policyName string

var (
	// ErrNotEnoughResources is returned when an allocation does not fit into the node.
	ErrNotEnoughResources = errors.New("not enough resources available")
	// ErrCapacityOverflow is returned when a release would push the node past its capacity.
	// It means the bookkeeping is broken.
	ErrCapacityOverflow = errors.New("release exceeds node capacity")
)

// Policy manages the CPU and memory of one server node.
type Policy interface {
	Name() string
	Status() string

	Capacity() v1alpha1.Resources
	Available() v1alpha1.Resources
	Fits(req v1alpha1.Resources) bool

	Allocate(req v1alpha1.Resources) error
	Release(req v1alpha1.Resources) error
}
