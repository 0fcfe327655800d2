package producer

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/mcncl/pollinate/internal/models"
)

// Source is the randomness a sample draws from. *rand.Rand satisfies it.
// A Source is not safe for concurrent use; give each goroutine its own.
type Source interface {
	Uint64() uint64
	Uint64N(n uint64) uint64
	IntN(n int) int
}

// NewSource returns a PCG source for the given seed and stream. Equal
// arguments always yield the same sequence.
func NewSource(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}

// Sample draws one value from p.
func Sample(p Producer, rng Source) models.JSONValue {
	switch v := p.(type) {
	case *Discrete:
		return models.Clone(v.values[rng.IntN(len(v.values))])
	case *Ranged:
		return sampleRange(v.min, v.max, rng)
	case *Array:
		n := v.min + int(rng.Uint64N(uint64(v.max-v.min)+1))
		out := make(models.JSONArray, n)
		for i := range out {
			out[i] = Sample(v.element, rng)
		}
		return out
	case *Object:
		return SampleObject(v, rng)
	default:
		panic(fmt.Sprintf("producer: unknown producer %T", p))
	}
}

// SampleObject draws one document from o, visiting fields in name order.
func SampleObject(o *Object, rng Source) models.JSONObject {
	out := make(models.JSONObject, len(o.fields))
	for _, f := range o.fields {
		out[f.Name] = Sample(f.Producer, rng)
	}
	return out
}

func sampleRange(min, max int64, rng Source) int64 {
	// max-min computed in uint64 is exact for every valid interval
	span := uint64(max) - uint64(min)
	if span == math.MaxUint64 {
		return int64(rng.Uint64())
	}
	return min + int64(rng.Uint64N(span+1))
}
