package shuffle

import "hash/fnv"

// Rand is a splitmix64 generator. The sequence for a given seed is a fixed
// property of this package, independent of Go version, so orderings derived
// from a session seed are reproducible across processes.
type Rand struct {
	state uint64
}

func New(seed uint64) *Rand {
	return &Rand{state: seed}
}

// NewFromString seeds from the FNV-1a hash of s.
func NewFromString(s string) *Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return New(h.Sum64())
}

func (r *Rand) Next() uint64 {
	r.state += 0x9e3779b97f4a7c15
	z := r.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Intn returns a value in [0, n). n must be positive.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Next() % uint64(n))
}

// Float64 returns a value in [0, 1).
func (r *Rand) Float64() float64 {
	return float64(r.Next()>>11) / (1 << 53)
}

// Shuffle runs an in-place Fisher-Yates over n elements.
func (r *Rand) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		swap(i, j)
	}
}
