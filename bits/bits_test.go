package bits

import (
	"encoding/binary"
	"testing"
)

func TestWriteReadWords(t *testing.T) {

	buf := make([]byte, 16)

	w := NewEncodeBuffer(buf, binary.NativeEndian)
	w.PutUint32(0xDEADBEEF)
	w.PutUint32(7)
	w.EmptyBytes(4)
	w.PutUint32(42)

	if w.Position() != 16 {
		t.Fatalf("Expected position %d but got %d", 16, w.Position())
	}

	r := NewReader(w.Bytes(), binary.NativeEndian)

	if v := r.MustReadU32(); v != 0xDEADBEEF {
		t.Errorf("Expected %x but got %x", 0xDEADBEEF, v)
	}
	if v := r.MustReadU32(); v != 7 {
		t.Errorf("Expected %d but got %d", 7, v)
	}
	if err := r.Skip(4); err != nil {
		t.Fatalf("skip failed: %s", err.Error())
	}
	if v := r.MustReadU32(); v != 42 {
		t.Errorf("Expected %d but got %d", 42, v)
	}

	if _, err := r.ReadU32(); err != ErrEOF {
		t.Errorf("Expected ErrEOF but got %v", err)
	}
}

func TestWriterOverflowPanics(t *testing.T) {

	defer func() {
		if recover() == nil {
			t.Errorf("Expected a panic on overflow")
		}
	}()

	w := NewEncodeBuffer(make([]byte, 3), binary.NativeEndian)
	w.PutUint32(1)
}

func TestEmptyBytesZeroes(t *testing.T) {

	buf := []byte{0xFF, 0xFF, 0xFF, 0xFF}

	w := NewEncodeBuffer(buf, binary.NativeEndian)
	w.EmptyBytes(4)

	for i, b := range buf {
		if b != 0 {
			t.Errorf("byte %d : Expected 0 but got %x", i, b)
		}
	}
}
