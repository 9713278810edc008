package parallel

import (
	"fmt"

	"github.com/dot5enko/accel-deflate/engine"
	"github.com/dot5enko/accel-deflate/frame"
	"golang.org/x/exp/constraints"
)

func ceilDiv[T constraints.Integer](a, b T) T {
	return (a + b - 1) / b
}

// blockPlan partitions one input buffer for a single compress call.
// It lives only for the duration of that call.
type blockPlan struct {
	blockSize     uint32
	lastBlockSize uint32
	blocks        uint32

	headerOffset uint32

	// per-slot parking window size inside the output buffer
	scratch uint32
}

// planCompress splits inputSize bytes into blockSize blocks and carves the
// post-header output region into blocks+1 equal parking windows. The extra
// window keeps every in-flight descriptor's window ahead of the contiguous
// reassembly cursor.
func planCompress(inputSize int, blockSize int, outCap int) (blockPlan, error) {

	p := blockPlan{
		blockSize:     uint32(blockSize),
		lastBlockSize: uint32(inputSize % blockSize),
		blocks:        uint32(ceilDiv(inputSize, blockSize)),
	}
	p.headerOffset = frame.HeaderOffset(p.blocks)

	needed := engine.MaxCompressedBlockSize(p.blockSize)

	if uint64(outCap) < uint64(p.headerOffset)+uint64(p.blocks+1)*uint64(needed) {
		return blockPlan{}, fmt.Errorf("%w: %d blocks of %d bytes need %d bytes of staging, have %d",
			ErrOutputTooSmall, p.blocks, blockSize, uint64(p.headerOffset)+uint64(p.blocks+1)*uint64(needed), outCap)
	}

	p.scratch = uint32((outCap - int(p.headerOffset)) / int(p.blocks+1))

	return p, nil
}

// inputWindow is the byte span of block b inside the source buffer.
func (p blockPlan) inputWindow(b uint32) (int, int) {

	size := int(p.blockSize)
	if p.lastBlockSize > 0 && b == p.blocks-1 {
		size = int(p.lastBlockSize)
	}

	return int(b) * int(p.blockSize), size
}

// scratchWindow is the parking span for block b inside the output buffer.
// Window zero is never handed to a descriptor, so the reassembly cursor
// stays strictly behind every outstanding window.
func (p blockPlan) scratchWindow(b uint32) (int, int) {
	return int(p.headerOffset) + int(b+1)*int(p.scratch), int(p.scratch)
}
