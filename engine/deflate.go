package engine

import (
	"errors"
	"io"

	"github.com/klauspost/compress/flate"
)

var errWindowFull = errors.New("output window full")

// windowWriter deflates straight into the job's output window and fails
// the moment the window runs out.
type windowWriter struct {
	dst []byte
	pos int
}

func (w *windowWriter) Write(p []byte) (int, error) {

	n := copy(w.dst[w.pos:], p)
	w.pos += n

	if n < len(p) {
		return n, errWindowFull
	}

	return n, nil
}

func flateLevel(l Level) int {
	if l == Level3 {
		return flate.BestCompression
	}
	return flate.BestSpeed
}

// MaxCompressedBlockSize is the safe output bound for deflating blockSize
// bytes of arbitrary data: stored-block framing expands incompressible
// input, so the bound sits above the plain size.
func MaxCompressedBlockSize(blockSize uint32) uint32 {
	return blockSize + blockSize/255 + 64
}

func (d *dispatcher) deflateJob(job *Job) Status {

	// the orchestrator frames every block as a standalone stream
	if job.Flags&(FlagFirst|FlagLast) != (FlagFirst | FlagLast) {
		return StatusBadArgs
	}
	if job.Level != Level1 && job.Level != Level3 {
		return StatusBadArgs
	}

	pool := d.compressPools[0]
	if job.Level == Level3 {
		pool = d.compressPools[1]
	}

	zw := pool.Get()
	defer pool.Put(zw)

	win := &windowWriter{dst: job.Out}
	zw.Reset(win)

	if _, err := zw.Write(job.In); err != nil {
		return deflateFailure(err)
	}
	if err := zw.Close(); err != nil {
		return deflateFailure(err)
	}

	job.TotalOut = uint32(win.pos)

	return StatusOk
}

func deflateFailure(err error) Status {
	if errors.Is(err, errWindowFull) {
		return StatusOutputFull
	}
	return StatusInternalError
}

func (d *dispatcher) inflateJob(job *Job) Status {

	zr := d.inflatePool.Get(job.In)
	defer d.inflatePool.Put(zr)

	total := 0
	for total < len(job.Out) {
		n, err := zr.Read(job.Out[total:])
		total += n

		if err == io.EOF {
			job.TotalOut = uint32(total)
			return StatusOk
		}
		if err != nil {
			return StatusBadPayload
		}
	}

	// window is full, the stream must be finished too
	var probe [1]byte
	n, err := zr.Read(probe[:])
	if n > 0 {
		return StatusOutputFull
	}
	if err != nil && err != io.EOF {
		return StatusBadPayload
	}

	job.TotalOut = uint32(total)

	return StatusOk
}
