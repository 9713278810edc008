package parallel

import (
	"github.com/dot5enko/accel-deflate/frame"
)

// buildFrame assembles a raw frame with an arbitrary header and a zeroed
// payload of payloadLen bytes, for feeding crafted input to Decompress.
func buildFrame(blockSize uint32, lastBlockSize uint32, perBlock []uint32, payloadLen int) []byte {

	buf := make([]byte, int(frame.HeaderOffset(uint32(len(perBlock))))+payloadLen)
	frame.WriteHeader(buf, blockSize, lastBlockSize, perBlock)

	return buf
}
