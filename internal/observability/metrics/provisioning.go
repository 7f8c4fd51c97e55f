// Copyright 2026 The Provdir Authors
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

package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ProvisioningMetrics instruments the queue workflow.
type ProvisioningMetrics struct {
	requests metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
}

// NewProvisioningMetrics registers the workflow instruments on the meter.
func NewProvisioningMetrics(m *Meter) (*ProvisioningMetrics, error) {
	requests, err := m.CreateCounter("provisioning_requests_total", "Provisioning requests handled")
	if err != nil {
		return nil, err
	}
	failures, err := m.CreateCounter("provisioning_failures_total", "Provisioning requests that errored")
	if err != nil {
		return nil, err
	}
	duration, err := m.CreateHistogram("provisioning_duration_seconds", "Provisioning request handling time", "s")
	if err != nil {
		return nil, err
	}
	return &ProvisioningMetrics{
		requests: requests,
		failures: failures,
		duration: duration,
	}, nil
}

// Observe records one handled request on the given topic.
func (p *ProvisioningMetrics) Observe(ctx context.Context, topic string, elapsed time.Duration, err error) {
	if p == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("topic", topic))
	p.requests.Add(ctx, 1, attrs)
	if err != nil {
		p.failures.Add(ctx, 1, attrs)
	}
	p.duration.Record(ctx, elapsed.Seconds(), attrs)
}
