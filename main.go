package main

import (
	"bytes"
	"log"
	"math/rand"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dot5enko/accel-deflate/engine"
	"github.com/dot5enko/accel-deflate/parallel"
	"github.com/fatih/color"
	"github.com/pierrec/lz4/v4"
)

func testCycles(n int, label string, testSize int, cb func()) {

	before := time.Now()

	for range n {
		cb()
	}

	after := time.Since(before)

	perByte := after.Nanoseconds() / int64(n) / int64(testSize)
	log.Printf(" %s : %d ns/byte", label, perByte)
}

func genCompressible(size int) []byte {

	data := make([]byte, size)

	// runs of repeated values with a bit of noise, roughly log-file shaped
	for i := 0; i < size; {
		run := 16 + rand.Intn(240)
		val := byte(rand.Intn(64))
		for j := 0; j < run && i < size; j++ {
			data[i] = val
			i++
		}
		if i < size {
			data[i] = byte(rand.Intn(256))
			i++
		}
	}

	return data
}

func genRandom(size int) []byte {

	data := make([]byte, size)
	rand.Read(data)

	return data
}

func roundTrip(ctx *parallel.Context, data []byte, out []byte, plain []byte, level engine.Level, dynHuffman bool) int {

	frameSize, err := ctx.Compress(out, data, level, dynHuffman)
	if err != nil {
		color.Red("compress failed: %s", err.Error())
		return 0
	}

	plainSize, err := ctx.Decompress(plain, out[:frameSize], dynHuffman)
	if err != nil {
		color.Red("decompress failed: %s", err.Error())
		return 0
	}

	if !bytes.Equal(plain[:plainSize], data) {
		color.Red("round trip mismatch: %d in, %d out", len(data), plainSize)
		spew.Dump("first plain bytes ", plain[:min(64, plainSize)])
		return 0
	}

	return frameSize
}

func lz4Baseline(data []byte) int {

	out := make([]byte, lz4.CompressBlockBound(len(data)))

	var c lz4.Compressor
	n, err := c.CompressBlock(data, out)
	if err != nil {
		color.Red("lz4 baseline failed: %s", err.Error())
		return 0
	}

	return n
}

func main() {

	const blockSize = 1 << 20
	const slots = 7

	ctx, err := parallel.Allocate(slots, blockSize, engine.PathAuto)
	if err != nil {
		log.Fatalf("allocate failed: %s", err.Error())
	}
	defer ctx.Close()

	if err := ctx.Init(); err != nil {
		log.Fatalf("init failed: %s", err.Error())
	}

	payloads := []struct {
		label string
		data  []byte
	}{
		{"7MiB compressible", genCompressible(7 << 20)},
		{"7MiB random", genRandom(7 << 20)},
		{"200B tail", genCompressible(200)},
	}

	for _, p := range payloads {

		out := make([]byte, 2*len(p.data)+(16<<20))
		plain := make([]byte, len(p.data)+1)

		frameSize := roundTrip(ctx, p.data, out, plain, engine.Level1, false)
		if frameSize == 0 {
			continue
		}

		lz4Size := lz4Baseline(p.data)

		color.Green(" +++ %s : %d -> %d bytes (lz4 baseline %d)", p.label, len(p.data), frameSize, lz4Size)

		testCycles(5, p.label+" deflate L1", len(p.data), func() {
			ctx.Compress(out, p.data, engine.Level1, false)
		})
		testCycles(5, p.label+" deflate L1 dyn", len(p.data), func() {
			ctx.Compress(out, p.data, engine.Level1, true)
		})
		testCycles(5, p.label+" lz4", len(p.data), func() {
			lz4Baseline(p.data)
		})
	}
}
