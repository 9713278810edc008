package parallel

import (
	"fmt"
	"time"

	"github.com/dot5enko/accel-deflate/engine"
	"github.com/dot5enko/accel-deflate/frame"
)

// Decompress expands a frame produced by Compress into dst and returns the
// plain byte count. The frame header is validated before anything is
// submitted, a frame with zero sub-blocks is expanded through the spare
// record in one synchronous job.
func (c *Context) Decompress(dst, src []byte, dynHuffman bool) (int, error) {

	if c == nil || c.records == nil || !c.initialized {
		return 0, fmt.Errorf("%w: context not initialized", ErrEngine)
	}

	header, err := frame.ReadHeader(src, len(dst))
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrBadFrame, err.Error())
	}

	if header.Blocks() == 0 {
		return c.decompressSingle(dst, src[frame.FixedHeaderSize:], dynHuffman)
	}

	return c.decompressBlocks(dst, src, header, dynHuffman)
}

func (c *Context) decompressSingle(dst, payload []byte, dynHuffman bool) (int, error) {

	if len(payload) == 0 {
		return 0, nil
	}

	job := c.single
	job.In = payload
	job.Out = dst
	job.Op = engine.OpDecompress
	job.Flags = jobFlags(dynHuffman)

	switch st := engine.Execute(job); st {
	case engine.StatusOk:
	case engine.StatusOutputFull:
		return 0, fmt.Errorf("%w: single block plain data does not fit", ErrOutputTooSmall)
	case engine.StatusBadPayload:
		return 0, fmt.Errorf("%w: single block payload is not a deflate stream", ErrBadFrame)
	default:
		return 0, fmt.Errorf("%w: execute (decompress) : %s", ErrEngine, st)
	}

	return int(job.TotalOut), nil
}

// decompressBlocks mirrors the compression loop. Output windows are final
// positions known from the header, so there is no staging and no copy, the
// loop only recycles slots. The last batch is collected through the
// wait-all barrier and its per-slot statuses are inspected one by one.
func (c *Context) decompressBlocks(dst, src []byte, header frame.Header, dynHuffman bool) (size int, retErr error) {

	flags := jobFlags(dynHuffman)

	blocks := int(header.Blocks())
	active := min(len(c.slots), blocks)

	deadline := time.Now().Add(waitDeadline)

	// an aborted call must not leave slots owned by the device
	defer func() {
		if retErr != nil {
			waitAll(c.slots[:active], deadline)
		}
	}()

	// cumulative payload offsets per block
	inOffset := make([]int, blocks+1)
	inOffset[0] = int(header.Offset())
	for i, s := range header.PerBlock {
		inOffset[i+1] = inOffset[i] + int(s)
	}

	plainSize := func(b int) int {
		if b == blocks-1 && header.LastBlockSize > 0 {
			return int(header.LastBlockSize)
		}
		return int(header.BlockSize)
	}

	prepare := func(job *engine.Job, b int) {
		outStart := b * int(header.BlockSize)

		job.In = src[inOffset[b]:inOffset[b+1]]
		job.Out = dst[outStart : outStart+plainSize(b)]
		job.Op = engine.OpDecompress
		job.Flags = flags
	}

	slotBlock := make([]int, active)

	for i := 0; i < active; i++ {
		prepare(&c.slots[i], i)
		slotBlock[i] = i

		if st := submitRetry(&c.slots[i]); st != engine.StatusOk {
			return 0, fmt.Errorf("%w: submit (decompress) of block %d : %s", ErrEngine, i, st)
		}
	}

	cursor := 0
	nextPending := active
	total := 0

	for nextPending < blocks {

		slot := &c.slots[cursor]

		st, err := pollTerminal(slot, deadline)
		if err != nil {
			return 0, fmt.Errorf("%w: block %d stuck at %s", ErrTimeout, slotBlock[cursor], st)
		}

		b := slotBlock[cursor]
		if n, err := checkPlainBlock(st, slot, b, plainSize(b)); err != nil {
			return 0, err
		} else {
			total += n
		}

		prepare(slot, nextPending)
		slotBlock[cursor] = nextPending

		if st := submitRetry(slot); st != engine.StatusOk {
			return 0, fmt.Errorf("%w: submit (decompress) of block %d : %s", ErrEngine, nextPending, st)
		}
		nextPending++

		cursor = (cursor + 1) % active
	}

	statuses, err := waitAll(c.slots[:active], deadline)
	if err != nil {
		return 0, fmt.Errorf("%w: %d of %d blocks finished", ErrTimeout, blocks-active+countTerminal(statuses), blocks)
	}

	for i, st := range statuses {
		b := slotBlock[i]

		n, err := checkPlainBlock(st, &c.slots[i], b, plainSize(b))
		if err != nil {
			return 0, err
		}
		total += n
	}

	return total, nil
}

func checkPlainBlock(st engine.Status, job *engine.Job, block int, want int) (int, error) {

	switch st {
	case engine.StatusOk:
	case engine.StatusOutputFull:
		return 0, fmt.Errorf("%w: block %d does not fit its declared plain size", ErrOutputTooSmall, block)
	case engine.StatusBadPayload:
		return 0, fmt.Errorf("%w: block %d payload is not a deflate stream", ErrBadFrame, block)
	default:
		return 0, fmt.Errorf("%w: check (decompress) of block %d : %s", ErrEngine, block, st)
	}

	if int(job.TotalOut) != want {
		return 0, fmt.Errorf("%w: block %d expanded to %d bytes, header declares %d", ErrBadFrame, block, job.TotalOut, want)
	}

	return want, nil
}

func countTerminal(statuses []engine.Status) int {

	n := 0
	for _, st := range statuses {
		if st.Terminal() {
			n++
		}
	}

	return n
}
