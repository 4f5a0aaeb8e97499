package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// TestTelemetry holds in-memory OpenTelemetry components for tests.
type TestTelemetry struct {
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
	mr *sdkmetric.ManualReader
}

// NewTestTelemetry creates a TestTelemetry instance backed by a manual
// metric reader.
func NewTestTelemetry(t *testing.T) *TestTelemetry {
	t.Helper()

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	mr := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(mr))
	otel.SetMeterProvider(mp)

	return &TestTelemetry{
		tp: tp,
		mp: mp,
		mr: mr,
	}
}

// Telemetry wraps the test providers in a recording Telemetry instance.
func (tt *TestTelemetry) Telemetry(t *testing.T) *Telemetry {
	t.Helper()

	tel := &Telemetry{tp: tt.tp, mp: tt.mp, enabled: true}
	if err := tel.initInstruments(); err != nil {
		t.Fatalf("init instruments: %v", err)
	}
	return tel
}

// Shutdown gracefully shuts down the test telemetry providers.
func (tt *TestTelemetry) Shutdown(ctx context.Context) error {
	if err := tt.tp.Shutdown(ctx); err != nil {
		return err
	}
	return tt.mp.Shutdown(ctx)
}

// GetReader returns the manual metric reader for assertions.
func (tt *TestTelemetry) GetReader() *sdkmetric.ManualReader {
	return tt.mr
}
