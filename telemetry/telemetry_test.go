package telemetry

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type TelemetrySuite struct {
	suite.Suite
	ctx context.Context
}

func (s *TelemetrySuite) SetupTest() {
	s.ctx = context.Background()
}

func TestTelemetrySuite(t *testing.T) {
	suite.Run(t, new(TelemetrySuite))
}

func (s *TelemetrySuite) TestNewDebug() {
	tel, err := New(s.ctx, Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		Debug:          true,
		Enabled:        true,
		TraceWriter:    io.Discard,
		MetricWriter:   io.Discard,
	})
	s.NoError(err)
	s.NotNil(tel)
	s.True(tel.IsEnabled())
	s.NotNil(tel.tracer)
	s.NotNil(tel.meter)
	s.NotNil(tel.solveDuration)
	s.NotNil(tel.errorCounter)
	s.NoError(tel.Shutdown(s.ctx))
}

func (s *TelemetrySuite) TestNewDisabled() {
	tel, err := New(s.ctx, Config{
		ServiceName: "test-service",
		Enabled:     false,
	})
	s.NoError(err)
	s.NotNil(tel)
	s.False(tel.IsEnabled())
}

func (s *TelemetrySuite) TestNewNoop() {
	tel, err := NewNoop()
	s.NoError(err)
	s.NotNil(tel)
	s.False(tel.IsEnabled())
	s.NotNil(tel.tracer)
	s.NotNil(tel.meter)
	s.NotNil(tel.solveDuration)
	s.NotNil(tel.errorCounter)
}

func (s *TelemetrySuite) TestStartSpan() {
	testTel := NewTestTelemetry(s.T())
	defer testTel.Shutdown(s.ctx)

	tel := testTel.Telemetry(s.T())

	ctx, span := tel.StartSpan(s.ctx, "test-span")
	s.NotNil(span)
	s.NotEqual(s.ctx, ctx)
	span.End()

	noopTel, err := NewNoop()
	s.NoError(err)

	ctx, span = noopTel.StartSpan(s.ctx, "test-span")
	s.NotNil(span)
	s.Equal(s.ctx, ctx, "noop span must not touch the context")
	span.End()
}

func (s *TelemetrySuite) TestRecordSolve() {
	testTel := NewTestTelemetry(s.T())
	defer testTel.Shutdown(s.ctx)

	tel := testTel.Telemetry(s.T())

	tel.RecordSolve(s.ctx, 100*time.Millisecond, "x", "200", nil)
	tel.RecordSolve(s.ctx, 200*time.Millisecond, "x", "400", errors.New("test error"))

	var metrics metricdata.ResourceMetrics
	s.NoError(testTel.GetReader().Collect(s.ctx, &metrics))
	s.NotEmpty(metrics.ScopeMetrics)

	// Recording through a disabled instance must not panic.
	noopTel, err := NewNoop()
	s.NoError(err)
	noopTel.RecordSolve(s.ctx, 100*time.Millisecond, "x", "200", nil)
}

func (s *TelemetrySuite) TestNewFromEnv() {
	os.Setenv("OTEL_ENABLED", "true")
	os.Setenv("OTEL_DEBUG", "true")
	os.Setenv("ENVIRONMENT", "test-env")
	defer func() {
		os.Unsetenv("OTEL_ENABLED")
		os.Unsetenv("OTEL_DEBUG")
		os.Unsetenv("ENVIRONMENT")
	}()

	tel, err := NewFromEnv(s.ctx, "test-service", "1.0.0")
	s.NoError(err)
	s.True(tel.IsEnabled())
	s.NoError(tel.Shutdown(s.ctx))

	os.Setenv("OTEL_ENABLED", "false")
	tel, err = NewFromEnv(s.ctx, "test-service", "1.0.0")
	s.NoError(err)
	s.NotNil(tel)
	s.False(tel.IsEnabled())
}

func (s *TelemetrySuite) TestGetEnvOrDefault() {
	os.Setenv("TEST_ENV_VAR", "test-value")
	s.Equal("test-value", getEnvOrDefault("TEST_ENV_VAR", "default-value"))

	os.Unsetenv("TEST_ENV_VAR")
	s.Equal("default-value", getEnvOrDefault("TEST_ENV_VAR", "default-value"))
}
