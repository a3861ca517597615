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

package catalog

import (
	"github.com/sergelogvinov/fleet-planner/pkg/apis/v1alpha1"
)

var (
	// ServersSingleModel has one model with 2/2 per node.
	ServersSingleModel = []v1alpha1.ServerModel{
		{Name: "M1", CPU: 4, Memory: 4, PurchaseCost: 100, DailyCost: 2},
	}

	// ServersTiered ranks S, M, L by efficiency score (7.85, 9.35, 10.85).
	ServersTiered = []v1alpha1.ServerModel{
		{Name: "L", CPU: 16, Memory: 16, PurchaseCost: 560, DailyCost: 8},
		{Name: "S", CPU: 4, Memory: 4, PurchaseCost: 100, DailyCost: 2},
		{Name: "M", CPU: 8, Memory: 8, PurchaseCost: 240, DailyCost: 4},
	}

	VMs = []v1alpha1.VMModel{
		{Name: "V1", CPU: 2, Memory: 2, Mode: v1alpha1.DeploymentSingle},
		{Name: "V2", CPU: 4, Memory: 4, Mode: v1alpha1.DeploymentDual},
		{Name: "V3", CPU: 1, Memory: 1, Mode: v1alpha1.DeploymentSingle},
		{Name: "big", CPU: 6, Memory: 6, Mode: v1alpha1.DeploymentSingle},
		{Name: "bigdual", CPU: 12, Memory: 12, Mode: v1alpha1.DeploymentDual},
		{Name: "huge", CPU: 10, Memory: 10, Mode: v1alpha1.DeploymentSingle},
	}
)

// Add is a shortcut for an add request.
func Add(vmType string, id int) v1alpha1.Operation {
	return v1alpha1.AddOperation{VMType: vmType, ID: id}
}

// Remove is a shortcut for a remove request.
func Remove(id int) v1alpha1.Operation {
	return v1alpha1.RemoveOperation{ID: id}
}
