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

// Package scenario reads the server and VM catalogs together with the request
// timeline, either in the line format of the request stream or as a YAML/JSON document.
package scenario

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/sergelogvinov/fleet-planner/pkg/apis/v1alpha1"
)

const (
	opAdd = "add"
	opDel = "del"
)

var (
	// ErrSyntax is returned for input which does not follow the scenario format.
	ErrSyntax = errors.New("scenario syntax error")
	// ErrUnknownFormat is returned for a file extension the loader does not know.
	ErrUnknownFormat = errors.New("unknown scenario format")
)

// Format is the encoding of a scenario file.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
)

// FormatOf guesses the format from the file name. Anything that is not YAML or JSON is read as text.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return FormatYAML
	default:
		return FormatText
	}
}

// Read parses a scenario in the given format.
func Read(r io.Reader, format Format) (*v1alpha1.Scenario, error) {
	switch format {
	case FormatText:
		return ParseText(r)
	case FormatYAML:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read scenario: %w", err)
		}

		return ParseYAML(data)
	}

	return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
}

// Load reads a scenario file. "-" reads the line format from stdin.
func Load(path string) (*v1alpha1.Scenario, error) {
	if path == "-" {
		return ParseText(os.Stdin)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario %s: %w", path, err)
	}

	s, err := Read(bytes.NewReader(data), FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenario %s: %w", path, err)
	}

	return s, nil
}
