// Package equationapi implements the equation-solving service: parsing
// calculator-notation input, selecting the variable to solve for, and running
// the symbolic engine on a bounded worker pool.
package equationapi

import (
	"context"
	"math"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Jeffail/tunny"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/solvekit/go-equation-api/symbolic"
	"github.com/solvekit/go-equation-api/telemetry"
)

// Solver runs equation solves on a worker pool with a per-solve timeout.
type Solver struct {
	log      *zap.SugaredLogger
	validate *validator.Validate

	cbList         []OnAfterSolveCallback
	afterSolvePool sync.Pool

	options    *solverOptions
	workerPool *tunny.Pool
	tele       *telemetry.Telemetry
}

// NewSolver creates a Solver with the provided options, filling in defaults
// for the rest.
func NewSolver(validate *validator.Validate, options ...SolverOption) *Solver {
	o := solverOptions{
		name:         uuid.New().String(),
		workerNum:    runtime.NumCPU(),
		solveTimeout: 30 * time.Second,
		logResult:    false,
	}

	for _, option := range options {
		option(&o)
	}

	solver := Solver{
		log:      zap.S().With("module", "equation.solver"),
		validate: validate,
		options:  &o,

		afterSolvePool: sync.Pool{
			New: func() interface{} {
				return new(AfterSolveEvent)
			},
		},
	}
	solver.workerPool = tunny.NewFunc(o.workerNum, solver.processJob)

	return &solver
}

// SetTelemetry attaches OpenTelemetry tracing and metrics to the solver.
func (s *Solver) SetTelemetry(tele *telemetry.Telemetry) {
	s.tele = tele
}

// Close shuts down the worker pool. Pending solves are completed first.
func (s *Solver) Close() {
	s.workerPool.Close()
}

// Solve handles one request end to end: validation, parsing, variable
// selection and solving. Failures never escape as panics; every outcome is a
// SolveResult carrying either a result string or a caller-facing error.
func (s *Solver) Solve(ctx context.Context, req *EquationRequest) *SolveResult {
	start := time.Now()
	res := &SolveResult{Status: StatusOK}

	if s.tele != nil {
		var span trace.Span
		ctx, span = s.tele.StartSpan(ctx, "solver.Solve")
		defer span.End()
	}

	defer func() {
		res.Duration = time.Since(start).Round(time.Millisecond)

		evt := s.afterSolvePool.Get().(*AfterSolveEvent)
		evt.Labels = prometheus.Labels{}
		evt.Duration = res.Duration
		evt.Res = res

		if s.options.logResult {
			if res.OK() {
				s.log.Infof("Solved %q (%v)", req.Equation, res.Duration)
			} else {
				s.log.Infof("Solve of %q failed (%v): %v", req.Equation, res.Duration, res.Err)
			}
		}

		if s.tele != nil {
			s.tele.RecordSolve(ctx, res.Duration, req.Variable, strconv.Itoa(res.Status), res.Err)
		}

		s.emitAfterSolve(evt)
	}()

	if err := s.validate.Struct(req); err != nil {
		res.fail(s.classifyFieldError(err))
		return res
	}

	equation := strings.TrimSpace(req.Equation)
	if equation == "" {
		res.fail(ErrMissingEquation)
		return res
	}

	job := &solveJob{equation: equation, variable: strings.TrimSpace(req.Variable)}
	out, err := s.workerPool.ProcessTimed(job, s.options.solveTimeout)
	if err != nil {
		// On timeout the worker is still running; its result stays on the
		// abandoned job and never touches res.
		res.fail(NewSolveError(err))
		return res
	}

	wres := out.(*SolveResult)
	res.Result, res.Err, res.Status = wres.Result, wres.Err, wres.Status
	return res
}

type solveJob struct {
	equation string
	variable string
}

// processJob runs one solve on the worker pool. The result travels back as
// the job's return value, so a caller that timed out and moved on shares no
// memory with the worker.
func (s *Solver) processJob(payload interface{}) (out interface{}) {
	job := payload.(*solveJob)
	res := &SolveResult{Status: StatusOK}
	out = res

	defer func() {
		if r := recover(); r != nil {
			s.log.Desugar().WithOptions(zap.AddStacktrace(zapcore.ErrorLevel)).Sugar().
				Errorf("panic solving %q: %v", job.equation, r)
			res.fail(NewSolveError(errors.Newf("%v", r)))
		}
	}()

	s.run(job.equation, job.variable, res)
	return res
}

func (s *Solver) classifyFieldError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Equation" {
				return ErrMissingEquation
			}
		}
	}
	return errors.Mark(err, ErrValidation)
}

func (s *Solver) run(equation, variable string, res *SolveResult) {
	form, err := ParseForm(equation)
	if err != nil {
		if IsValidationError(err) {
			res.fail(err)
		} else {
			res.fail(NewSolveError(err))
		}
		return
	}

	free := form.FreeVars()
	if len(free) == 0 && variable == "" {
		res.Result = evaluate(form)
		return
	}

	name := SelectVariable(free, variable)
	roots, err := symbolic.Solve(form.Residual(), name)
	if err != nil {
		res.fail(NewSolveError(err))
		return
	}
	if len(roots) == 0 {
		res.Result = "No solution found"
		return
	}

	parts := make([]string, len(roots))
	for i, r := range roots {
		parts[i] = r.String()
	}
	res.Result = name + " = " + strings.Join(parts, ", ")
}

// evaluate handles constant input: equations become a truth value, bare
// expressions their simplified rendering.
func evaluate(form ParsedForm) string {
	switch f := form.(type) {
	case *EquationForm:
		if n, ok := f.Residual().Eval(); ok {
			if nearZero(n) {
				return "True"
			}
			return "False"
		}
		// Opaque constants such as sqrt(-1) cannot be decided numerically;
		// fall back to structural equality of the simplified sides.
		if f.LHS.Simplify().Equal(f.RHS.Simplify()) {
			return "True"
		}
		return "False"
	case *ExpressionForm:
		return f.Expr.Simplify().String()
	}
	return ""
}

func nearZero(n *symbolic.Num) bool {
	if !n.IsApprox() {
		return n.IsZero()
	}
	return math.Abs(n.Float64()) < 1e-9
}

// AfterSolveEvent is emitted after each solve completes.
type AfterSolveEvent struct {
	Labels   prometheus.Labels
	Duration time.Duration
	Res      *SolveResult
}

// OnAfterSolveCallback is executed after each solve with the completed event.
type OnAfterSolveCallback func(e *AfterSolveEvent)

// OnAfterSolve registers a callback to run after every solve.
func (s *Solver) OnAfterSolve(cb OnAfterSolveCallback) {
	s.cbList = append(s.cbList, cb)
}

func (s *Solver) emitAfterSolve(e *AfterSolveEvent) {
	for _, cb := range s.cbList {
		cb(e)
	}
	s.afterSolvePool.Put(e)
}

// RegisterMetrics wires Prometheus collectors to the after-solve event:
// responseTime observes solve duration with name and status labels,
// errorCount counts failures with the error message attached.
func (s *Solver) RegisterMetrics(responseTime *prometheus.HistogramVec, errorCount *prometheus.GaugeVec) {
	s.OnAfterSolve(func(e *AfterSolveEvent) {
		labels := e.Labels
		labels["name"] = s.options.name
		labels["status"] = strconv.Itoa(e.Res.Status)

		if responseTime != nil {
			responseTime.
				With(labels).
				Observe(e.Duration.Seconds())
		}

		if e.Res.Err != nil && errorCount != nil {
			labels["message"] = e.Res.Err.Error()
			errorCount.
				With(labels).
				Inc()
		}
	})
}
