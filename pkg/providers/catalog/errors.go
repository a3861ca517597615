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

import "github.com/pkg/errors"

var (
	// ErrInvalidCatalog is returned when a catalog entry cannot be used.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrUnknownVMModel is returned when a request refers to a VM type missing from the catalog.
	ErrUnknownVMModel = errors.New("VM model not found")
	// ErrUnknownServerModel is returned when a server model is missing from the catalog.
	ErrUnknownServerModel = errors.New("server model not found")
)
