package pipeline

import (
	"fmt"

	"telemetry-ingest/internal/models"
)

// State is the execution state of one pipeline run.
type State int

const (
	StateRunning State = iota
	StateSucceeded
	StateFailed
)

// Result is the outcome of executing a pipeline against one extracted value.
type Result struct {
	State      State
	Value      Value
	FailedStep string
	Err        error
}

func (r Result) Succeeded() bool { return r.State == StateSucceeded }

// Error renders the failure as reported in a measurement's parsing errors.
func (r Result) Error() string {
	if r.Err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %v", r.FailedStep, r.Err)
}

// Execute feeds the extracted value through the operators in declared order.
// The first failing operator stops the run; no partial result is exposed.
// An empty pipeline succeeds with the value unchanged.
func Execute(ops []Operator, initial Value) Result {
	r := Result{State: StateRunning, Value: initial}
	for _, op := range ops {
		out, err := op.Apply(r.Value)
		if err != nil {
			return Result{State: StateFailed, FailedStep: op.Name(), Err: err}
		}
		r.Value = out
	}
	r.State = StateSucceeded
	return r
}

// Run builds and executes a serialized pipeline in one call. Build failures
// (unknown type, invalid config) fail the run the same way an operator
// failure would, scoped to the current field.
func Run(steps []models.PipelineStep, initial Value) Result {
	ops, err := Build(steps)
	if err != nil {
		return Result{State: StateFailed, FailedStep: "pipeline", Err: err}
	}
	return Execute(ops, initial)
}
