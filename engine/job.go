package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"
)

type Status int32

const (
	StatusOk Status = iota
	StatusBeingProcessed
	StatusQueuesBusy
	StatusNotSubmitted
	StatusOutputFull
	StatusBadArgs
	StatusBadPayload
	StatusInternalError
)

var statusNames = map[Status]string{
	StatusOk:             "ok",
	StatusBeingProcessed: "being_processed",
	StatusQueuesBusy:     "queues_busy",
	StatusNotSubmitted:   "not_submitted",
	StatusOutputFull:     "output_full",
	StatusBadArgs:        "bad_args",
	StatusBadPayload:     "bad_payload",
	StatusInternalError:  "internal_error",
}

func (s Status) String() string {
	name, ok := statusNames[s]
	if !ok {
		return fmt.Sprintf("status(%d)", int32(s))
	}
	return name
}

// Terminal reports whether a job holding this status is done with the
// device, successfully or not.
func (s Status) Terminal() bool {
	return s != StatusBeingProcessed && s != StatusQueuesBusy
}

type Operation uint8

const (
	OpCompress Operation = iota
	OpDecompress
)

type Level uint8

const (
	Level1 Level = 1
	Level3 Level = 3
)

type Flag uint32

const (
	FlagFirst Flag = 1 << iota
	FlagLast
	FlagOmitVerify
	FlagDynamicHuffman
)

type Path uint8

const (
	PathAuto Path = iota
	PathSoftware
	PathHardware
)

var ErrNoHardware = errors.New("no IAA work-queue devices available")

// job lifecycle, driven by Submit/worker/Execute only
const (
	jobIdle int32 = iota
	jobQueued
	jobRunning
	jobDone
)

// Job is one submission record. The In/Out windows are borrowed from the
// caller for the duration of a single submit..terminal-check cycle, the
// record itself owns nothing else.
type Job struct {
	In  []byte
	Out []byte

	Op    Operation
	Level Level
	Flags Flag

	// filled in by the device once the job reaches a terminal state
	TotalOut uint32

	dev    *dispatcher
	state  atomic.Int32
	result atomic.Int32
}

// JobSize reports the size of a single job record in bytes.
func JobSize(path Path) (uint32, error) {
	if path > PathHardware {
		return 0, fmt.Errorf("unknown execution path : %d", path)
	}
	return uint32(unsafe.Sizeof(Job{})), nil
}

// InitJob binds the record to the process-wide device dispatcher.
// PathHardware fails when no accelerator work-queue is present,
// PathAuto silently falls back to the software path.
func InitJob(path Path, job *Job) error {

	if job == nil {
		return errors.New("nil job record")
	}

	switch path {
	case PathHardware:
		if probeHardwareQueues() == 0 {
			return ErrNoHardware
		}
	case PathAuto, PathSoftware:
	default:
		return fmt.Errorf("unknown execution path : %d", path)
	}

	job.dev = getDispatcher()
	job.state.Store(jobIdle)
	job.result.Store(int32(StatusOk))

	return nil
}

// FiniJob releases the record's device binding. Finalizing a record that
// is still owned by the device is a caller defect.
func FiniJob(job *Job) error {

	if job == nil {
		return errors.New("nil job record")
	}

	st := job.state.Load()
	if st == jobQueued || st == jobRunning {
		return errors.New("job is still owned by the device")
	}

	job.dev = nil
	job.state.Store(jobIdle)

	return nil
}

// Submit hands the record to the device. On StatusOk the device owns the
// record (and its In/Out windows) until Check reports a terminal status.
// A record in a terminal state may be reconfigured and submitted again.
func Submit(job *Job) Status {

	if job.dev == nil {
		return StatusBadArgs
	}

	st := job.state.Load()
	if st == jobQueued || st == jobRunning {
		return StatusBadArgs
	}

	job.TotalOut = 0
	job.state.Store(jobQueued)

	if !job.dev.enqueue(job) {
		job.state.Store(st)
		return StatusQueuesBusy
	}

	return StatusOk
}

// Check polls the record without blocking.
func Check(job *Job) Status {

	if job == nil || job.dev == nil {
		return StatusBadArgs
	}

	switch job.state.Load() {
	case jobIdle:
		return StatusNotSubmitted
	case jobQueued, jobRunning:
		return StatusBeingProcessed
	default:
		return Status(job.result.Load())
	}
}

// Execute runs the record synchronously on the calling thread, bypassing
// the submission queues.
func Execute(job *Job) Status {

	if job.dev == nil {
		return StatusBadArgs
	}

	st := job.state.Load()
	if st == jobQueued || st == jobRunning {
		return StatusBadArgs
	}

	job.TotalOut = 0
	job.state.Store(jobRunning)

	res := job.dev.run(job)

	job.result.Store(int32(res))
	job.state.Store(jobDone)

	return res
}
