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

package main

import (
	"context"
	"io"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"

	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// setupLogger writes human-readable logs to w, named after the command.
// Higher verbosity enables the per-day and per-decision V-levels of the engine.
func setupLogger(verbosity int, w io.Writer) logr.Logger {
	opt := &zap.Options{
		Development:     true,
		Level:           zapcore.Level(-verbosity),
		StacktraceLevel: zapcore.PanicLevel,
		DestWriter:      w,
		EncoderConfigOptions: []zap.EncoderConfigOption{
			func(ec *zapcore.EncoderConfig) {
				ec.TimeKey = ""
				ec.NameKey = "component"
			},
		},
	}

	return zap.New(zap.UseFlagOptions(opt)).WithName(command).WithValues("version", version)
}

// withRunID tags the context logger with a new run id. The plan carries the same id,
// so every line of one planning run, watch replans included, can be matched to its output.
func withRunID(ctx context.Context) (context.Context, string) {
	runID := uuid.NewString()

	return log.IntoContext(ctx, log.FromContext(ctx).WithValues("runID", runID)), runID
}
