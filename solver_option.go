package equationapi

import "time"

type solverOptions struct {
	name         string
	workerNum    int
	solveTimeout time.Duration
	logResult    bool
}

// SolverOption is a functional option for configuring the solver.
type SolverOption func(o *solverOptions)

// WithSolverName sets the solver instance name used in metric labels.
func WithSolverName(name string) SolverOption {
	return func(o *solverOptions) {
		o.name = name
	}
}

// WithWorkerNum sets the number of workers running solves. Defaults to the
// number of CPUs.
func WithWorkerNum(count int) SolverOption {
	return func(o *solverOptions) {
		o.workerNum = count
	}
}

// WithSolveTimeout bounds the time a single solve may spend in the worker
// pool. Defaults to 30 seconds.
func WithSolveTimeout(d time.Duration) SolverOption {
	return func(o *solverOptions) {
		o.solveTimeout = d
	}
}

// WithLogResult enables logging of every solve outcome.
func WithLogResult(logResult bool) SolverOption {
	return func(o *solverOptions) {
		o.logResult = logResult
	}
}
