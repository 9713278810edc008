package frame

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {

	perBlock := []uint32{100, 90, 120, 7}

	buf := make([]byte, int(HeaderOffset(4))+100+90+120+7)
	n := WriteHeader(buf, 4096, 900, perBlock)

	if n != int(HeaderOffset(4)) {
		t.Fatalf("Expected %d header bytes but got %d", HeaderOffset(4), n)
	}

	h, err := ReadHeader(buf, 4*4096+900)
	if err != nil {
		t.Fatalf("read back failed: %s", err.Error())
	}

	if h.BlockSize != 4096 {
		t.Errorf("Expected block size %d but got %d", 4096, h.BlockSize)
	}
	if h.LastBlockSize != 900 {
		t.Errorf("Expected last block size %d but got %d", 900, h.LastBlockSize)
	}
	if h.Blocks() != 4 {
		t.Errorf("Expected %d blocks but got %d", 4, h.Blocks())
	}
	for i, s := range h.PerBlock {
		if s != perBlock[i] {
			t.Errorf("block %d : Expected %d but got %d", i, perBlock[i], s)
		}
	}
	if h.PayloadSize() != 317 {
		t.Errorf("Expected payload of %d bytes but got %d", 317, h.PayloadSize())
	}
	if h.PlainSize() != 3*4096+900 {
		t.Errorf("Expected plain size %d but got %d", 3*4096+900, h.PlainSize())
	}
}

func TestSingleBlockHeader(t *testing.T) {

	buf := make([]byte, FixedHeaderSize+40)
	WriteHeader(buf, 4096, 200, nil)

	h, err := ReadHeader(buf, 4096)
	if err != nil {
		t.Fatalf("read back failed: %s", err.Error())
	}

	if h.Blocks() != 0 {
		t.Errorf("Expected %d blocks but got %d", 0, h.Blocks())
	}
	if h.Offset() != 16 {
		t.Errorf("Expected offset %d but got %d", 16, h.Offset())
	}
	if h.PlainSize() != 200 {
		t.Errorf("Expected plain size %d but got %d", 200, h.PlainSize())
	}
}

func TestReservedWordIsZeroedAndIgnored(t *testing.T) {

	buf := make([]byte, FixedHeaderSize)
	buf[12], buf[13], buf[14], buf[15] = 0xFF, 0xFF, 0xFF, 0xFF

	WriteHeader(buf, 64, 10, nil)

	if binary.NativeEndian.Uint32(buf[12:]) != 0 {
		t.Errorf("writer must zero the reserved word")
	}

	// a reader must not care what sits there
	buf[12] = 0xAB
	if _, err := ReadHeader(buf, 64); err != nil {
		t.Errorf("reserved word broke the parse: %s", err.Error())
	}
}

func TestRejectShortBuffer(t *testing.T) {

	if _, err := ReadHeader(make([]byte, 15), 1024); !errors.Is(err, ErrBadHeader) {
		t.Errorf("Expected ErrBadHeader for a short buffer but got %v", err)
	}
}

func TestRejectZeroBlockSize(t *testing.T) {

	buf := make([]byte, FixedHeaderSize)
	WriteHeader(buf, 0, 0, nil)

	if _, err := ReadHeader(buf, 1024); !errors.Is(err, ErrBadHeader) {
		t.Errorf("Expected ErrBadHeader for zero block size but got %v", err)
	}
}

func TestRejectOverCapacity(t *testing.T) {

	buf := make([]byte, int(HeaderOffset(3))+30)
	WriteHeader(buf, 1024, 0, []uint32{10, 10, 10})

	// 3 * 1024 plain bytes against a 100 byte output
	if _, err := ReadHeader(buf, 100); !errors.Is(err, ErrBadHeader) {
		t.Errorf("Expected ErrBadHeader for capacity overflow but got %v", err)
	}
}

func TestRejectOversizedPerBlockEntry(t *testing.T) {

	buf := make([]byte, int(HeaderOffset(3))+120)
	WriteHeader(buf, 10, 0, []uint32{100, 10, 10})

	if _, err := ReadHeader(buf, 1024); !errors.Is(err, ErrBadHeader) {
		t.Errorf("Expected ErrBadHeader for an oversized table entry but got %v", err)
	}
}

func TestRejectPayloadSumMismatch(t *testing.T) {

	// legacy frames put the payload at (T+2)*4, which shifts the whole
	// region and breaks the sum check against the real frame length
	buf := make([]byte, int(HeaderOffset(2))+20)
	WriteHeader(buf, 64, 0, []uint32{10, 10})

	truncated := buf[:len(buf)-8]

	if _, err := ReadHeader(truncated, 1024); !errors.Is(err, ErrBadHeader) {
		t.Errorf("Expected ErrBadHeader for a payload sum mismatch but got %v", err)
	}
}

func TestRejectTableBeyondFrame(t *testing.T) {

	buf := make([]byte, FixedHeaderSize)
	WriteHeader(buf, 64, 0, nil)

	// claim 1000 blocks in a 16 byte frame
	binary.NativeEndian.PutUint32(buf[8:], 1000)

	if _, err := ReadHeader(buf, 1<<20); !errors.Is(err, ErrBadHeader) {
		t.Errorf("Expected ErrBadHeader for a table overflowing the frame but got %v", err)
	}
}
