package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes.
const (
	outcomeOK       = "ok"
	outcomeAborted  = "aborted"
	outcomeCanceled = "canceled"
)

// Shape outcomes.
const (
	shapeCompiled = "compiled"
	shapeNoScope  = "no_scope"
	shapeFailed   = "failed"
)

var (
	// runsTotal counts compilation runs.
	// Labels: outcome (ok, aborted, canceled)
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shaclq",
		Subsystem: "compiler",
		Name:      "runs_total",
		Help:      "Total compilation runs by outcome",
	}, []string{"outcome"})

	// shapesTotal counts shapes handled by completed runs.
	// Labels: outcome (compiled, no_scope, failed)
	shapesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shaclq",
		Subsystem: "compiler",
		Name:      "shapes_total",
		Help:      "Total shapes compiled by outcome",
	}, []string{"outcome"})

	// errorsTotal counts compiler errors.
	// Labels: code (diag error code)
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shaclq",
		Subsystem: "compiler",
		Name:      "errors_total",
		Help:      "Total compiler errors by code",
	}, []string{"code"})

	// diagnosticsTotal counts non-fatal diagnostics.
	// Labels: kind
	diagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shaclq",
		Subsystem: "compiler",
		Name:      "diagnostics_total",
		Help:      "Total compilation diagnostics by kind",
	}, []string{"kind"})

	// cyclesTotal counts shape reference cycles found before compiling.
	cyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shaclq",
		Subsystem: "compiler",
		Name:      "cycles_total",
		Help:      "Total shape reference cycles reported",
	})

	// runDuration measures wall time per run.
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "shaclq",
		Subsystem: "compiler",
		Name:      "run_duration_seconds",
		Help:      "Compilation run duration in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})
)
