package parallel

import (
	"errors"
	"testing"

	"github.com/dot5enko/accel-deflate/engine"
)

func TestAllocateValidation(t *testing.T) {

	if _, err := Allocate(0, 256, engine.PathSoftware); !errors.Is(err, ErrOutOfMemory) {
		t.Errorf("Expected ErrOutOfMemory for zero slots but got %v", err)
	}
	if _, err := Allocate(4, 0, engine.PathSoftware); !errors.Is(err, ErrOutOfMemory) {
		t.Errorf("Expected ErrOutOfMemory for zero block size but got %v", err)
	}
}

func TestFreeIdempotence(t *testing.T) {

	ctx, err := Allocate(4, 256, engine.PathSoftware)
	if err != nil {
		t.Fatalf("allocate failed: %s", err.Error())
	}

	// never initialized: close releases memory only
	ctx.Close()
	ctx.Close()

	var gone *Context
	gone.Close()
}

func TestCloseAfterInit(t *testing.T) {

	ctx, err := Allocate(2, 256, engine.PathSoftware)
	if err != nil {
		t.Fatalf("allocate failed: %s", err.Error())
	}
	if err := ctx.Init(); err != nil {
		t.Fatalf("init failed: %s", err.Error())
	}

	ctx.Close()
	ctx.Close()
}

func TestUseAfterClose(t *testing.T) {

	ctx, err := Allocate(2, 256, engine.PathSoftware)
	if err != nil {
		t.Fatalf("allocate failed: %s", err.Error())
	}
	if err := ctx.Init(); err != nil {
		t.Fatalf("init failed: %s", err.Error())
	}
	ctx.Close()

	out := make([]byte, 1024)
	if _, err := ctx.Compress(out, []byte("abc"), engine.Level1, false); !errors.Is(err, ErrEngine) {
		t.Errorf("Expected ErrEngine on a closed context but got %v", err)
	}
}

func TestSingleSlotSerialLoop(t *testing.T) {

	ctx := newTestContext(t, 1, 128)

	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(i % 7)
	}

	mustRoundTrip(t, ctx, data, engine.Level1, false)
}
