package randomwalk

import "math/rand"

// StreamSet hands out one independent *rand.Rand per worker, each seeded
// deterministically from a single master seed so that a run is
// bit-reproducible for a given master seed and number of workers
// (framework.go's runtime.GOMAXPROCS range-partitioned worker pool assigns
// one goroutine per index range; StreamSet assigns one RNG stream the same
// way).
type StreamSet struct {
	streams []*rand.Rand
}

// NewStreamSet derives n independent streams from masterSeed. Each stream
// is seeded with a distinct derived value (splitmix64-style mixing of the
// master seed and the stream index) rather than consecutive seeds, which
// would otherwise leave Go's default source visibly correlated between
// adjacent streams.
func NewStreamSet(masterSeed int64, n int) *StreamSet {
	streams := make([]*rand.Rand, n)
	for i := 0; i < n; i++ {
		streams[i] = rand.New(rand.NewSource(splitmix64(uint64(masterSeed), uint64(i))))
	}
	return &StreamSet{streams: streams}
}

// Stream returns the i'th worker's RNG.
func (s *StreamSet) Stream(i int) *rand.Rand {
	return s.streams[i]
}

// Len returns the number of streams.
func (s *StreamSet) Len() int {
	return len(s.streams)
}

// splitmix64 mixes a master seed with a stream index into a well-spread
// 64-bit seed, per the public-domain SplitMix64 algorithm.
func splitmix64(seed, index uint64) int64 {
	z := seed + index*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z = z ^ (z >> 31)
	return int64(z)
}
