package parallel

import (
	"fmt"
	"time"

	"github.com/dot5enko/accel-deflate/engine"
	"github.com/dot5enko/accel-deflate/frame"
)

func jobFlags(dynHuffman bool) engine.Flag {

	flags := engine.FlagFirst | engine.FlagLast | engine.FlagOmitVerify
	if dynHuffman {
		flags |= engine.FlagDynamicHuffman
	}

	return flags
}

// Compress deflates src into dst as a self-describing frame and returns
// the frame size. Inputs no larger than the context block size take the
// synchronous single-block path, everything else is split into blocks and
// pipelined through the slot pool.
//
// On error the contents of dst are undefined. The context stays usable.
func (c *Context) Compress(dst, src []byte, level engine.Level, dynHuffman bool) (int, error) {

	if c == nil || c.records == nil || !c.initialized {
		return 0, fmt.Errorf("%w: context not initialized", ErrEngine)
	}

	if len(src) <= c.blockSize {
		return c.compressSingle(dst, src, level, dynHuffman)
	}

	plan, err := planCompress(len(src), c.blockSize, len(dst))
	if err != nil {
		return 0, err
	}

	return c.compressBlocks(dst, src, plan, level, dynHuffman)
}

func (c *Context) compressSingle(dst, src []byte, level engine.Level, dynHuffman bool) (int, error) {

	if len(dst) < frame.FixedHeaderSize {
		return 0, fmt.Errorf("%w: no room for the frame header", ErrOutputTooSmall)
	}

	// empty input compresses to a header-only frame
	if len(src) == 0 {
		frame.WriteHeader(dst, uint32(c.blockSize), 0, nil)
		return frame.FixedHeaderSize, nil
	}

	job := c.single
	job.In = src
	job.Out = dst[frame.FixedHeaderSize:]
	job.Op = engine.OpCompress
	job.Level = level
	job.Flags = jobFlags(dynHuffman)

	switch st := engine.Execute(job); st {
	case engine.StatusOk:
	case engine.StatusOutputFull:
		return 0, fmt.Errorf("%w: single block payload does not fit", ErrOutputTooSmall)
	default:
		return 0, fmt.Errorf("%w: execute (compress) : %s", ErrEngine, st)
	}

	frame.WriteHeader(dst, uint32(c.blockSize), uint32(len(src)), nil)

	return frame.FixedHeaderSize + int(job.TotalOut), nil
}

func (c *Context) prepareCompress(job *engine.Job, dst, src []byte, plan blockPlan, b uint32, level engine.Level, flags engine.Flag) {

	inStart, inSize := plan.inputWindow(b)
	scratchStart, scratchSize := plan.scratchWindow(b)

	job.In = src[inStart : inStart+inSize]
	job.Out = dst[scratchStart : scratchStart+scratchSize]
	job.Op = engine.OpCompress
	job.Level = level
	job.Flags = flags
}

// compressBlocks is the multi-block submission loop: prime up to N slots,
// then replace every finished descriptor with the next pending block while
// folding finished output into its final contiguous position. Completions
// are consumed in block-index order via a round-robin cursor, so the
// reassembly cursor only ever moves forward.
func (c *Context) compressBlocks(dst, src []byte, plan blockPlan, level engine.Level, dynHuffman bool) (size int, retErr error) {

	flags := jobFlags(dynHuffman)

	active := min(len(c.slots), int(plan.blocks))
	slotBlock := make([]uint32, active)
	perBlock := make([]uint32, plan.blocks)

	deadline := time.Now().Add(waitDeadline)

	// an aborted call must not leave slots owned by the device
	defer func() {
		if retErr != nil {
			waitAll(c.slots[:active], deadline)
		}
	}()

	for i := 0; i < active; i++ {
		b := uint32(i)

		c.prepareCompress(&c.slots[i], dst, src, plan, b, level, flags)
		slotBlock[i] = b

		if st := submitRetry(&c.slots[i]); st != engine.StatusOk {
			return 0, fmt.Errorf("%w: submit (compress) of block %d : %s", ErrEngine, b, st)
		}
	}

	cursor := 0
	completed := uint32(0)
	nextPending := uint32(active)
	outPos := int(plan.headerOffset)

	for completed < plan.blocks {

		slot := &c.slots[cursor]

		st, err := pollTerminal(slot, deadline)
		if err != nil {
			return 0, fmt.Errorf("%w: block %d stuck at %s", ErrTimeout, slotBlock[cursor], st)
		}
		if st != engine.StatusOk {
			return 0, fmt.Errorf("%w: check (compress) of block %d : %s", ErrEngine, slotBlock[cursor], st)
		}

		b := slotBlock[cursor]
		scratchStart, _ := plan.scratchWindow(b)
		n := int(slot.TotalOut)

		copy(dst[outPos:], dst[scratchStart:scratchStart+n])
		perBlock[b] = slot.TotalOut
		outPos += n
		completed++

		if nextPending < plan.blocks {
			c.prepareCompress(slot, dst, src, plan, nextPending, level, flags)
			slotBlock[cursor] = nextPending

			if st := submitRetry(slot); st != engine.StatusOk {
				return 0, fmt.Errorf("%w: submit (compress) of block %d : %s", ErrEngine, nextPending, st)
			}
			nextPending++
		}

		cursor = (cursor + 1) % active
	}

	// header goes in last, a complete header implies a complete payload
	frame.WriteHeader(dst, plan.blockSize, plan.lastBlockSize, perBlock)

	return outPos, nil
}
