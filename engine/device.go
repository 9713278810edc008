package engine

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// submissions a single work queue can hold before reporting busy
const queueDepth = 8

type workQueue struct {
	jobs chan *Job
}

// dispatcher models the process-wide device: a fixed set of bounded work
// queues, each drained by a dedicated routine. Discovery happens once per
// process, concurrent first users are collapsed through singleflight.
type dispatcher struct {
	queues []*workQueue
	next   atomic.Uint32

	hardwareQueues int

	compressPools [2]*flateWriterPool
	inflatePool   *flateReaderPool

	waiter sync.WaitGroup
}

var (
	activeDispatcher atomic.Pointer[dispatcher]
	dispatcherGroup  singleflight.Group
	teardownLock     sync.Mutex
)

func getDispatcher() *dispatcher {

	if d := activeDispatcher.Load(); d != nil {
		return d
	}

	v, _, _ := dispatcherGroup.Do("device", func() (any, error) {

		if d := activeDispatcher.Load(); d != nil {
			return d, nil
		}

		d := newDispatcher(runtime.NumCPU())
		activeDispatcher.Store(d)

		return d, nil
	})

	return v.(*dispatcher)
}

func newDispatcher(queuesCount int) *dispatcher {

	if queuesCount < 1 {
		queuesCount = 1
	}

	d := &dispatcher{
		queues:         make([]*workQueue, queuesCount),
		hardwareQueues: probeHardwareQueues(),
	}

	d.compressPools[0] = newFlateWriterPool(queuesCount, Level1)
	d.compressPools[1] = newFlateWriterPool(queuesCount, Level3)
	d.inflatePool = newFlateReaderPool(queuesCount)

	for i := range d.queues {
		q := &workQueue{jobs: make(chan *Job, queueDepth)}
		d.queues[i] = q

		d.waiter.Add(1)
		go d.drainQueue(q)
	}

	slog.Info("device dispatcher ready", "queues", queuesCount, "depth", queueDepth, "hardware_queues", d.hardwareQueues)

	return d
}

func (d *dispatcher) drainQueue(q *workQueue) {

	defer d.waiter.Done()

	for job := range q.jobs {
		job.state.Store(jobRunning)

		res := d.run(job)

		job.result.Store(int32(res))
		job.state.Store(jobDone)
	}
}

// enqueue tries every queue once, starting from a rotating cursor.
// All full means the caller sees QueuesBusy.
func (d *dispatcher) enqueue(job *Job) bool {

	start := d.next.Add(1)

	for i := range d.queues {
		q := d.queues[(int(start)+i)%len(d.queues)]

		select {
		case q.jobs <- job:
			return true
		default:
		}
	}

	return false
}

func (d *dispatcher) run(job *Job) Status {

	switch job.Op {
	case OpCompress:
		return d.deflateJob(job)
	case OpDecompress:
		return d.inflateJob(job)
	default:
		return StatusBadArgs
	}
}

// Teardown stops the queue routines and drops the process dispatcher.
// Outstanding jobs must have reached a terminal state first. Meant for
// tests and controlled process shutdown only.
func Teardown() {

	teardownLock.Lock()
	defer teardownLock.Unlock()

	d := activeDispatcher.Load()
	if d == nil {
		return
	}

	activeDispatcher.Store(nil)
	dispatcherGroup.Forget("device")

	for _, q := range d.queues {
		close(q.jobs)
	}
	d.waiter.Wait()
}
