package parallel

import (
	"runtime"
	"time"

	"github.com/dot5enko/accel-deflate/engine"
)

// Wall-clock budget for all polling in one multi-block call, armed once
// per call, so a wedged device queue cannot hang the caller forever.
const waitDeadline = 60 * time.Second

// submitRetry resubmits while the device reports full queues. Queue
// pressure is a cooperative hint, never an error.
func submitRetry(job *engine.Job) engine.Status {

	for {
		st := engine.Submit(job)
		if st != engine.StatusQueuesBusy {
			return st
		}
		runtime.Gosched()
	}
}

// pollTerminal spins on one slot until the device lets go of it or the
// deadline passes. The last observed status is returned either way.
func pollTerminal(job *engine.Job, deadline time.Time) (engine.Status, error) {

	for {
		st := engine.Check(job)
		if st.Terminal() {
			return st, nil
		}
		if time.Now().After(deadline) {
			return st, ErrTimeout
		}
		runtime.Gosched()
	}
}

// waitAll polls every slot until all of them are terminal or the deadline
// passes. Per-slot statuses captured at the final poll round are returned
// for inspection in both cases.
func waitAll(jobs []engine.Job, deadline time.Time) ([]engine.Status, error) {

	statuses := make([]engine.Status, len(jobs))

	for {
		done := true
		for i := range jobs {
			statuses[i] = engine.Check(&jobs[i])
			if !statuses[i].Terminal() {
				done = false
			}
		}

		if done {
			return statuses, nil
		}
		if time.Now().After(deadline) {
			return statuses, ErrTimeout
		}

		runtime.Gosched()
	}
}
