package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	equationapi "github.com/solvekit/go-equation-api"
	"github.com/solvekit/go-equation-api/httpapi"
	"github.com/solvekit/go-equation-api/telemetry"
)

func main() {
	host := flag.String("host", "0.0.0.0", "listen host")
	workerNum := flag.Int("workers", 0, "solver workers (0 = number of CPUs)")
	solveTimeout := flag.Duration("solve-timeout", 30*time.Second, "per-solve timeout")
	debug := flag.Bool("debug", false, "development logging")
	flag.Parse()

	var logger *zap.Logger
	if *debug {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	log := logger.Sugar()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	solverOpts := []equationapi.SolverOption{
		equationapi.WithSolverName("equation-server"),
		equationapi.WithSolveTimeout(*solveTimeout),
		equationapi.WithLogResult(*debug),
	}
	if *workerNum > 0 {
		solverOpts = append(solverOpts, equationapi.WithWorkerNum(*workerNum))
	}
	solver := equationapi.NewSolver(validator.New(), solverOpts...)
	defer solver.Close()

	responseTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "solve_response_time_seconds",
		Help: "Duration of equation solves.",
	}, []string{"name", "status"})
	errorCount := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "solve_error_count",
		Help: "Number of failed solves.",
	}, []string{"name", "status", "message"})
	prometheus.MustRegister(responseTime, errorCount)
	solver.RegisterMetrics(responseTime, errorCount)

	// Set OTEL_ENABLED=true to enable telemetry, OTEL_DEBUG=true for stdout
	// exporters.
	tel, err := telemetry.NewFromEnv(context.Background(), "equation-server", "1.0.0")
	if err != nil {
		log.Warnf("Failed to initialize telemetry: %v", err)
		tel, _ = telemetry.NewNoop()
	}
	if tel.IsEnabled() {
		log.Infof("Telemetry enabled")
	} else {
		log.Infof("Telemetry disabled (set OTEL_ENABLED=true to enable)")
	}
	solver.SetTelemetry(tel)

	server := httpapi.NewServer(solver, httpapi.WithAddr(*host+":"+port))

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Infof("Received signal %v, shutting down...", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Error shutting down server: %v", err)
	}
	if tel.IsEnabled() {
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Error shutting down telemetry: %v", err)
		}
	}
}
