package compiler

import "fmt"

// Outcome classifies what happened to one output file.
type Outcome string

const (
	OutcomeWritten Outcome = "written"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Recorder observes compile outcomes, typically to export metrics.
type Recorder interface {
	RecordOutcome(compiler string, outcome Outcome)
}

// Result summarizes one compiler run.
type Result struct {
	Compiler string `json:"compiler"`
	Written  int    `json:"written"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
}

// Add merges the counts of other into r.
func (r *Result) Add(other Result) {
	r.Written += other.Written
	r.Skipped += other.Skipped
	r.Failed += other.Failed
}

// Total returns the number of files considered.
func (r Result) Total() int {
	return r.Written + r.Skipped + r.Failed
}

func (r Result) String() string {
	return fmt.Sprintf("%s: %d written, %d skipped, %d failed",
		r.Compiler, r.Written, r.Skipped, r.Failed)
}

func (r *Result) count(o Outcome) {
	switch o {
	case OutcomeWritten:
		r.Written++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
}
