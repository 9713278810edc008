// Package frame encodes the self-describing container that prefixes every
// multi-block compressed buffer.
//
// Layout, all words 32-bit unsigned, native endian:
//
//	+0  block size
//	+4  last block size (plain input size when block count is zero)
//	+8  block count T
//	+12 reserved, written as zero, ignored on read
//	+16 per-block compressed sizes, T words, present only when T > 0
//
// The payload follows at (T+4)*4, blocks concatenated in index order.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dot5enko/accel-deflate/bits"
	"github.com/dot5enko/accel-deflate/engine"
)

const fixedWords = 4

// FixedHeaderSize is the header size of a frame with no sub-blocks.
const FixedHeaderSize = fixedWords * 4

var ErrBadHeader = errors.New("bad frame header")

type Header struct {
	BlockSize     uint32
	LastBlockSize uint32

	// compressed size of every block, in block-index order
	PerBlock []uint32
}

func (h Header) Blocks() uint32 {
	return uint32(len(h.PerBlock))
}

func HeaderOffset(blocks uint32) uint32 {
	return (blocks + fixedWords) * 4
}

func (h Header) Offset() uint32 {
	return HeaderOffset(h.Blocks())
}

// PayloadSize is the byte count of all compressed blocks combined.
func (h Header) PayloadSize() uint32 {

	total := uint32(0)
	for _, s := range h.PerBlock {
		total += s
	}

	return total
}

// PlainSize is the decompressed size the frame declares. When Blocks() == 0
// it is the last block size word, which holds the plain input size.
func (h Header) PlainSize() uint32 {

	t := h.Blocks()
	if t == 0 {
		return h.LastBlockSize
	}

	if h.LastBlockSize > 0 {
		return (t-1)*h.BlockSize + h.LastBlockSize
	}

	return t * h.BlockSize
}

// WriteHeader encodes the fixed prefix and the per-block size table into
// dst. dst must hold at least HeaderOffset(len(perBlock)) bytes. Returns
// the number of bytes written.
func WriteHeader(dst []byte, blockSize uint32, lastBlockSize uint32, perBlock []uint32) int {

	w := bits.NewEncodeBuffer(dst, binary.NativeEndian)

	w.PutUint32(blockSize)
	w.PutUint32(lastBlockSize)
	w.PutUint32(uint32(len(perBlock)))
	w.EmptyBytes(4)

	for _, s := range perBlock {
		w.PutUint32(s)
	}

	return w.Position()
}

// ReadHeader parses and validates a frame header. outCap is the capacity
// of the buffer the caller will decompress into.
//
// The retired layout that placed the payload at (T+2)*4 fails the payload
// sum check here and is rejected rather than misread.
func ReadHeader(src []byte, outCap int) (Header, error) {

	if len(src) < FixedHeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes is shorter than the fixed prefix", ErrBadHeader, len(src))
	}

	r := bits.NewReader(src, binary.NativeEndian)

	h := Header{
		BlockSize:     r.MustReadU32(),
		LastBlockSize: r.MustReadU32(),
	}
	blocks := r.MustReadU32()
	r.Skip(4) // reserved

	if h.BlockSize < 1 {
		return Header{}, fmt.Errorf("%w: zero block size", ErrBadHeader)
	}

	declared := uint64(blocks)*uint64(h.BlockSize) + uint64(h.LastBlockSize)
	if declared > uint64(outCap) {
		return Header{}, fmt.Errorf("%w: declares %d plain bytes, output capacity is %d", ErrBadHeader, declared, outCap)
	}

	if blocks == 0 {
		return h, nil
	}

	if uint64(len(src)) < uint64(HeaderOffset(blocks)) {
		return Header{}, fmt.Errorf("%w: %d blocks do not fit a %d byte frame", ErrBadHeader, blocks, len(src))
	}

	maxBlockOut := engine.MaxCompressedBlockSize(h.BlockSize)

	h.PerBlock = make([]uint32, blocks)
	payload := uint64(0)
	for i := range h.PerBlock {
		s := r.MustReadU32()
		if s > maxBlockOut {
			return Header{}, fmt.Errorf("%w: block %d compressed size %d exceeds the bound for %d byte blocks", ErrBadHeader, i, s, h.BlockSize)
		}
		h.PerBlock[i] = s
		payload += uint64(s)
	}

	if payload != uint64(len(src))-uint64(h.Offset()) {
		return Header{}, fmt.Errorf("%w: per-block sizes sum to %d, frame payload is %d bytes", ErrBadHeader, payload, len(src)-int(h.Offset()))
	}

	return h, nil
}
