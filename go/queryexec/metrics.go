// Copyright 2025 StratoDoc, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package queryexec

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/stratodoc/stratodoc/go/elements"
)

// Metrics holds the OpenTelemetry metrics for pipeline drains. Wrapper types
// hide the attribute key names from instrumented code. The pipeline core is
// uninstrumented; callers opt in by wrapping a component with Instrument.
type Metrics struct {
	drains        DrainCount
	requestCharge metric.Float64Counter
	pageSize      metric.Int64Histogram
}

// DrainCount wraps an Int64Counter counting drain calls per operator and
// outcome.
type DrainCount struct {
	metric.Int64Counter
}

// Record counts one drain for the given operator. succeeded is false for
// both pipeline errors and failed pages.
func (d DrainCount) Record(ctx context.Context, operator string, succeeded bool) {
	outcome := "success"
	if !succeeded {
		outcome = "failure"
	}
	d.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operator", operator),
		attribute.String("outcome", outcome),
	))
}

// NewMetrics creates pipeline metrics on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	drains, err := meter.Int64Counter(
		"stratodoc.query.drains",
		metric.WithDescription("Number of pipeline drain calls."),
	)
	if err != nil {
		return nil, err
	}
	requestCharge, err := meter.Float64Counter(
		"stratodoc.query.request_charge",
		metric.WithDescription("Cumulative request charge of drained pages."),
	)
	if err != nil {
		return nil, err
	}
	pageSize, err := meter.Int64Histogram(
		"stratodoc.query.page_size",
		metric.WithDescription("Number of elements per drained page."),
	)
	if err != nil {
		return nil, err
	}
	return &Metrics{
		drains:        DrainCount{drains},
		requestCharge: requestCharge,
		pageSize:      pageSize,
	}, nil
}

// NopMetrics returns metrics that record nothing.
func NopMetrics() *Metrics {
	m, err := NewMetrics(noop.NewMeterProvider().Meter("queryexec"))
	if err != nil {
		// The noop meter never fails to create instruments.
		panic(err)
	}
	return m
}

// Instrument wraps a component so every drain records drain count, request
// charge and page size for the given operator name. A nil Metrics records
// nothing.
func Instrument(inner Component, operator string, metrics *Metrics) Component {
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &instrumentedComponent{inner: inner, operator: operator, metrics: metrics}
}

type instrumentedComponent struct {
	inner    Component
	operator string
	metrics  *Metrics
}

func (c *instrumentedComponent) Drain(ctx context.Context, maxItems int) (*Page, error) {
	page, err := c.inner.Drain(ctx, maxItems)
	c.metrics.drains.Record(ctx, c.operator, err == nil && page.Succeeded())
	if page != nil {
		attrs := metric.WithAttributes(attribute.String("operator", c.operator))
		c.metrics.requestCharge.Add(ctx, page.RequestCharge, attrs)
		c.metrics.pageSize.Record(ctx, int64(len(page.Elements)), attrs)
	}
	return page, err
}

func (c *instrumentedComponent) SerializeState() (elements.Element, error) {
	return c.inner.SerializeState()
}

func (c *instrumentedComponent) IsDone() bool {
	return c.inner.IsDone()
}
