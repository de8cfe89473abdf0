package trial

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"golang.org/x/crypto/blake2b"
)

// NewRNG returns the generator for one trial. The ChaCha8 key is
// blake2b-256(seed || errorCount || run), so every trial draws the same
// values no matter which worker runs it.
func NewRNG(seed uint64, errorCount, run int) *rand.Rand {
	var in [24]byte
	binary.LittleEndian.PutUint64(in[0:], seed)
	binary.LittleEndian.PutUint64(in[8:], uint64(errorCount))
	binary.LittleEndian.PutUint64(in[16:], uint64(run))
	return rand.New(rand.NewChaCha8(blake2b.Sum256(in[:])))
}

// RandomMessage returns size symbols drawn uniformly from [0, mask].
func RandomMessage(rng *rand.Rand, mask, size int) []int {
	msg := make([]int, size)
	for i := range msg {
		msg[i] = int(rng.Uint64() & uint64(mask))
	}
	return msg
}

// ErrorVector returns size symbols that are zero except at count distinct
// positions, which hold nonzero values in [1, mask].
func ErrorVector(rng *rand.Rand, mask, size, count int) ([]int, error) {
	if count < 0 || count > size {
		return nil, fmt.Errorf("cannot place %d errors in %d symbols", count, size)
	}
	if count > 0 && mask < 1 {
		return nil, fmt.Errorf("mask %d leaves no nonzero error values", mask)
	}

	vec := make([]int, size)
	for _, pos := range rng.Perm(size)[:count] {
		x := 0
		for x == 0 {
			x = int(rng.Uint64() & uint64(mask))
		}
		vec[pos] = x
	}
	return vec, nil
}

// Combine returns a XOR b over the shorter length.
func Combine(a, b []int) []int {
	n := min(len(a), len(b))
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// Compare counts positions where a and b differ. Extra symbols in the longer
// slice count as differences.
func Compare(a, b []int) int {
	n := min(len(a), len(b))
	diff := max(len(a), len(b)) - n
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			diff++
		}
	}
	return diff
}
