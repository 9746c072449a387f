package tsio

// shuffle applies the HDF5-style byte-shuffle filter: given a buffer
// holding n elements of elemSize bytes each, it regroups the bytes so
// that byte k of every element is contiguous. Applied before deflate,
// this tends to turn the high-order bytes of a slowly-varying column
// (coordinates, in particular) into long runs, which compresses better
// than the interleaved original. There is no shuffle-filter
// implementation anywhere in the retrieval pack to ground this on; it is
// a small, well-known transform (used by HDF5 and by Blosc) implemented
// directly against spec.md §4.D's requirement.
func shuffle(buf []byte, elemSize int) []byte {
	n := len(buf) / elemSize
	out := make([]byte, len(buf))
	for e := 0; e < n; e++ {
		for k := 0; k < elemSize; k++ {
			out[k*n+e] = buf[e*elemSize+k]
		}
	}
	return out
}

// unshuffle inverts shuffle.
func unshuffle(buf []byte, elemSize int) []byte {
	n := len(buf) / elemSize
	out := make([]byte, len(buf))
	for e := 0; e < n; e++ {
		for k := 0; k < elemSize; k++ {
			out[e*elemSize+k] = buf[k*n+e]
		}
	}
	return out
}
