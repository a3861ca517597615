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

package options_test

import (
	"context"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sergelogvinov/fleet-planner/pkg/operator/options"
)

func TestDefaults(t *testing.T) {
	t.Setenv("PLANNER_FORMAT", "yaml")
	t.Setenv("VERBOSITY", "2")

	o := &options.Options{}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs)

	require.NoError(t, fs.Parse([]string{"-i", "training-1.txt"}))
	require.NoError(t, o.Validate())

	assert.Equal(t, "training-1.txt", o.InputPath)
	assert.Equal(t, "-", o.OutputPath)
	assert.Equal(t, "yaml", o.Format)
	assert.Equal(t, 2, o.Verbosity)
	assert.False(t, o.CheckInvariants)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		options options.Options
		err     bool
	}{
		{
			name:    "valid",
			options: options.Options{InputPath: "-", OutputPath: "-", Format: "json"},
		},
		{
			name:    "unknown format",
			options: options.Options{InputPath: "-", OutputPath: "-", Format: "xml"},
			err:     true,
		},
		{
			name:    "empty input",
			options: options.Options{OutputPath: "-", Format: "text"},
			err:     true,
		},
		{
			name:    "empty output",
			options: options.Options{InputPath: "-", Format: "text"},
			err:     true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := testCase.options.Validate()
			if testCase.err {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestContext(t *testing.T) {
	t.Parallel()

	assert.Nil(t, options.FromContext(context.Background()))

	o := &options.Options{InputPath: "a.txt"}
	ctx := o.ToContext(context.Background())

	assert.Same(t, o, options.FromContext(ctx))
}
