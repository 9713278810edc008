package engine

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"
)

// Channel-backed free lists for flate state. Encoder/decoder setup is the
// expensive part of a software-path job, so finished state is parked on a
// bounded channel and picked up by the next job at the same level. An
// empty list allocates, a full list drops.

type flateWriterPool struct {
	free  chan *flate.Writer
	level int
}

func newFlateWriterPool(n int, level Level) *flateWriterPool {
	return &flateWriterPool{
		free:  make(chan *flate.Writer, n),
		level: flateLevel(level),
	}
}

func (p *flateWriterPool) Get() *flate.Writer {

	select {
	case w := <-p.free:
		return w
	default:
	}

	w, err := flate.NewWriter(nil, p.level)
	if err != nil {
		// levels are fixed at pool construction
		panic(err)
	}

	return w
}

func (p *flateWriterPool) Put(w *flate.Writer) {
	w.Reset(nil)

	select {
	case p.free <- w:
	default:
	}
}

type flateReaderPool struct {
	free chan io.ReadCloser
}

func newFlateReaderPool(n int) *flateReaderPool {
	return &flateReaderPool{
		free: make(chan io.ReadCloser, n),
	}
}

func (p *flateReaderPool) Get(src []byte) io.ReadCloser {

	select {
	case r := <-p.free:
		r.(flate.Resetter).Reset(bytes.NewReader(src), nil)
		return r
	default:
	}

	return flate.NewReader(bytes.NewReader(src))
}

func (p *flateReaderPool) Put(r io.ReadCloser) {
	r.Close()

	select {
	case p.free <- r:
	default:
	}
}
