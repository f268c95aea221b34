// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CommandMetrics holds counters and histograms for queue command instrumentation
type CommandMetrics struct {
	commandCounter metric.Int64Counter
	durationHisto  metric.Float64Histogram
}

// NewCommandMetrics creates a new CommandMetrics instance for a given service name
func NewCommandMetrics(serviceName string) (*CommandMetrics, error) {
	meter := otel.Meter(serviceName)

	commandCounter, err := meter.Int64Counter(
		"bus_commands_total",
		metric.WithDescription("Total number of processed queue commands"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return nil, err
	}

	durationHisto, err := meter.Float64Histogram(
		"bus_command_duration",
		metric.WithDescription("Queue command handling duration"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &CommandMetrics{
		commandCounter: commandCounter,
		durationHisto:  durationHisto,
	}, nil
}

// RecordCommand records a single handled command with its attributes
func (m *CommandMetrics) RecordCommand(ctx context.Context, queue, command, outcome string, durationMs float64) {
	attrs := []attribute.KeyValue{
		attribute.String("bus_queue", queue),
		attribute.String("bus_command", command),
		attribute.String("bus_outcome", outcome),
	}

	m.commandCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.durationHisto.Record(ctx, durationMs, metric.WithAttributes(attrs...))
}
