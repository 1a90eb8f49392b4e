package virnet

// stream.go holds the single random number stream a model draws from.
// Every stochastic decision (placement, edge formation, outbreak choice,
// activation order, threshold draws) is routed through one RandStream, so
// that the same seed and parameters reproduce the same trajectory.
//
// A RandStream wraps an MRG32k3a stream from rngstream.  Streams created by
// rngstream.New are spaced apart from a package-wide seed, so the stream's
// initial state is overwritten with six words expanded from the model's own
// 64-bit seed; its draws then depend on nothing else.

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"github.com/iti/rngstream"
	"math"
	"sync"
)

// moduli of the two MRG32k3a components.  A seed word must be below the
// modulus of its component, and neither component may be all zero.
const (
	mrgM1 uint64 = 4294967087
	mrgM2 uint64 = 4294944443
)

// rngstream.New advances package state, so creation is serialized
var streamMu sync.Mutex

// RandStream is a seeded pseudo-random source
type RandStream struct {
	seed int64
	rng  *rngstream.RngStream
}

// CreateRandStream is a constructor.  The stream is fully determined by seed.
func CreateRandStream(seed int64) *RandStream {
	streamMu.Lock()
	rng := rngstream.New(fmt.Sprintf("virnet-%d", seed))
	streamMu.Unlock()

	if !rng.SetSeed(seedWords(seed)) {
		panic(fmt.Sprintf("virnet: invalid stream seed derived from %d", seed))
	}
	rng.SetIncreasedPrecis(true)

	rs := new(RandStream)
	rs.seed = seed
	rs.rng = rng
	return rs
}

// seedWords expands seed into the six words of an MRG32k3a state with a
// splitmix64 sequence, reducing each word below its component's modulus.
func seedWords(seed int64) []uint64 {
	words := make([]uint64, 6)
	x := uint64(seed)
	for idx := range words {
		x += 0x9e3779b97f4a7c15
		z := x
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		z ^= z >> 31
		if idx < 3 {
			words[idx] = z % mrgM1
		} else {
			words[idx] = z % mrgM2
		}
	}
	if words[0] == 0 && words[1] == 0 && words[2] == 0 {
		words[0] = 1
	}
	if words[3] == 0 && words[4] == 0 && words[5] == 0 {
		words[3] = 1
	}
	return words
}

// NewSeed draws a non-negative seed from the operating system's secure entropy source
func NewSeed() (int64, error) {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("reading seed entropy: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) & math.MaxInt64), nil
}

// Seed returns the seed the stream was created with
func (rs *RandStream) Seed() int64 {
	return rs.seed
}

// IntN returns a uniform integer in [lo, hi).  It panics if hi <= lo,
// the same contract as rand.IntN.
func (rs *RandStream) IntN(lo, hi int) int {
	if hi <= lo {
		panic(fmt.Sprintf("virnet: empty integer range [%d,%d)", lo, hi))
	}
	return rs.rng.RandInt(lo, hi-1)
}

// Float returns a uniform float in [lo, hi)
func (rs *RandStream) Float(lo, hi float64) float64 {
	return lo + (hi-lo)*rs.rng.RandU01()
}

// Choice returns a uniform index in [0, n)
func (rs *RandStream) Choice(n int) int {
	return rs.IntN(0, n)
}

// Permute returns a freshly shuffled copy of ids; ids itself is not modified
func (rs *RandStream) Permute(ids []int) []int {
	perm := make([]int, len(ids))
	copy(perm, ids)
	for idx := len(perm) - 1; idx > 0; idx-- {
		jdx := rs.rng.RandInt(0, idx)
		perm[idx], perm[jdx] = perm[jdx], perm[idx]
	}
	return perm
}

// Sample returns k distinct elements of ids chosen without replacement,
// in the order they were drawn.  Asking for more elements than ids holds
// is a *SampleSizeError; the request is never truncated.
func (rs *RandStream) Sample(ids []int, k int) ([]int, error) {
	if k < 0 {
		return nil, &InvalidParameterError{Name: "k", Value: k, Reason: "sample size must be non-negative"}
	}
	if k > len(ids) {
		return nil, &SampleSizeError{Requested: k, Population: len(ids)}
	}

	// partial Fisher-Yates over a copy, the first k slots are the sample
	pool := make([]int, len(ids))
	copy(pool, ids)
	for idx := 0; idx < k; idx++ {
		jdx := rs.rng.RandInt(idx, len(pool)-1)
		pool[idx], pool[jdx] = pool[jdx], pool[idx]
	}
	return pool[:k], nil
}
