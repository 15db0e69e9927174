package runner

import (
	"booksweep/sim_report"
	"booksweep/store"
)

type JobState int

const (
	StatePending JobState = iota
	StateRendered
	StateExecuting
	StateParsed
	StateSkipped
)

func (s JobState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRendered:
		return "rendered"
	case StateExecuting:
		return "executing"
	case StateParsed:
		return "parsed"
	case StateSkipped:
		return "skipped"
	}
	return "unknown"
}

// Job is one config moving through the batch. Only the worker that owns the
// job writes to it while the batch runs.
type Job struct {
	Handle   store.ConfigHandle
	State    JobState
	Reason   string
	ExitCode int
	Result   sim_report.Result
}

func (j *Job) Name() string {
	return j.Handle.Name()
}

func (j *Job) skip(reason string) {
	j.State = StateSkipped
	j.Reason = reason
}

func (j *Job) done() bool {
	return j.State == StateParsed || j.State == StateSkipped
}

// Summary is the outcome of a batch; Jobs keeps the input order.
type Summary struct {
	Total       int
	Parsed      int
	Skipped     int
	AlreadyDone int
	Jobs        []Job
}

func summarize(jobs []Job) Summary {
	s := Summary{Total: len(jobs), Jobs: jobs}
	for _, j := range jobs {
		switch j.State {
		case StateParsed:
			s.Parsed++
		case StateSkipped:
			s.Skipped++
			if j.Reason == reasonAlreadyStored {
				s.AlreadyDone++
			}
		}
	}
	return s
}
