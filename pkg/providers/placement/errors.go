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
	"github.com/pkg/errors"

	"github.com/sergelogvinov/fleet-planner/pkg/providers/fleet"
)

var (
	// ErrMalformedRequest is returned when a day batch contains a request which cannot be applied:
	// an Add of a live id or of an unknown VM type, or a Remove of an id which is not live.
	ErrMalformedRequest = errors.New("malformed request")
	// ErrInfeasible is returned when no server model of the catalog can host a demand.
	ErrInfeasible = errors.New("no server model can host the demand")
	// ErrCapacityOverflow is returned when the fleet books do not balance. The run cannot continue.
	ErrCapacityOverflow = fleet.ErrCapacityOverflow
)
