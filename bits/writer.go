package bits

import (
	"encoding/binary"
	"errors"
	"fmt"
)

type WordWriter struct {
	pos   int
	data  []byte
	size  int
	order binary.ByteOrder
}

func NewEncodeBuffer(buf []byte, order binary.ByteOrder) WordWriter {

	result := WordWriter{}

	result.data = buf
	result.pos = 0
	result.size = len(buf)
	result.order = order

	return result
}

func (this *WordWriter) Reset() {
	this.pos = 0
}

func (this WordWriter) Position() int {
	return this.pos
}

func (this *WordWriter) checkFit(n int) {
	if (this.pos + n) > this.size {
		panic(fmt.Sprintf("word writer overflow on pos : %d, need %d more, size : %d", this.pos, n, this.size))
	}
}

func (this *WordWriter) Write(p []byte) (n int, err error) {

	oldl := len(p)
	this.checkFit(oldl)

	n = copy(this.data[this.pos:], p)

	if oldl != n {
		return 0, errors.New("not enough space")
	}

	this.pos += n

	return
}

func (this *WordWriter) EmptyBytes(i int) {
	this.checkFit(i)

	for j := 0; j < i; j++ {
		this.data[this.pos+j] = 0
	}
	this.pos += i
}

func (this *WordWriter) Bytes() []byte {
	return this.data[:this.pos]
}

func (this *WordWriter) PutUint32(v uint32) {
	this.checkFit(4)

	this.order.PutUint32(this.data[this.pos:], v)
	this.pos += 4
}
