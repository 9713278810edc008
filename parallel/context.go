// Package parallel splits buffers into fixed-size blocks and drives them
// through a pool of asynchronous engine submission slots, producing a
// self-describing frame the same pool can decompress.
package parallel

import (
	"fmt"
	"log/slog"

	"github.com/dot5enko/accel-deflate/engine"
	"github.com/google/uuid"
)

// Context owns the engine job records for one compression pipeline: one
// record per submission slot plus a spare for the single-block path.
// A context serves one Compress or Decompress call at a time.
type Context struct {
	Uid uuid.UUID

	records []engine.Job // slots + the trailing spare
	slots   []engine.Job
	single  *engine.Job

	blockSize int
	path      engine.Path

	initialized bool
}

// Allocate builds a context with the given slot count and target block
// size. Records are not bound to the engine yet, call Init before use.
func Allocate(slots int, blockSize int, path engine.Path) (*Context, error) {

	if slots < 1 {
		return nil, fmt.Errorf("%w: need at least one slot, got %d", ErrOutOfMemory, slots)
	}
	if blockSize < 1 {
		return nil, fmt.Errorf("%w: block size must be positive, got %d", ErrOutOfMemory, blockSize)
	}

	recordSize, err := engine.JobSize(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOutOfMemory, err.Error())
	}

	ctx := &Context{
		Uid:       uuid.New(),
		records:   make([]engine.Job, slots+1),
		blockSize: blockSize,
		path:      path,
	}
	ctx.slots = ctx.records[:slots]
	ctx.single = &ctx.records[slots]

	slog.Debug("allocated compression context",
		"ctx", ctx.Uid.String(), "slots", slots, "block_size", blockSize, "record_size", recordSize)

	return ctx, nil
}

// Init binds every record to the engine. On failure the context stays
// uninitialized and Close only releases memory.
func (c *Context) Init() error {

	for i := range c.records {
		if err := engine.InitJob(c.path, &c.records[i]); err != nil {
			return fmt.Errorf("%w: record %d: %s", ErrEngineInit, i, err.Error())
		}
	}

	c.initialized = true

	return nil
}

func (c *Context) BlockSize() int {
	return c.blockSize
}

func (c *Context) Slots() int {
	if c == nil {
		return 0
	}
	return len(c.slots)
}

// Close finalizes the records if the context was initialized and releases
// them. Safe on a nil context and safe to call twice.
func (c *Context) Close() {

	if c == nil || c.records == nil {
		return
	}

	if c.initialized {
		for i := range c.records {
			if err := engine.FiniJob(&c.records[i]); err != nil {
				slog.Warn("record finalization failed", "ctx", c.Uid.String(), "record", i, "err", err.Error())
			}
		}
		c.initialized = false
	}

	c.records = nil
	c.slots = nil
	c.single = nil
}
