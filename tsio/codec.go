package tsio

import (
	"encoding/binary"
	"math"
)

func doubleBits(x float64) uint64 { return math.Float64bits(x) }
func bitsDouble(b uint64) float64 { return math.Float64frombits(b) }

func decodeU32(buf []byte) []uint32 {
	out := make([]uint32, len(buf)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(buf[4*i:])
	}
	return out
}

func decodeF64(buf []byte) []float64 {
	out := make([]float64, len(buf)/8)
	for i := range out {
		out[i] = bitsDouble(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return out
}
