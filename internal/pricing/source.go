package pricing

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// NormalSource yields independent standard normal draws.
type NormalSource interface {
	Rand() float64
}

// SourceFactory builds the normal source for one stream of a seeded run.
type SourceFactory func(seed, stream uint64) NormalSource

// NewNormalSource returns a unit normal distribution backed by a PCG generator
// whose state is derived from (seed, stream). Distinct streams of the same seed
// are independent; the same pair always replays the same draws.
func NewNormalSource(seed, stream uint64) NormalSource {
	hi := splitMix64(seed + stream*0x9e3779b97f4a7c15)
	lo := splitMix64(hi ^ stream)
	return distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewPCG(hi, lo)}
}

func splitMix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
