package tree

import (
	"math"
	"math/rand/v2"
	"sync"
)

// Source supplies uniform draws in [0, 1) for ephemeral constants.
// Constants and their clones keep drawing from the Source they were built
// with, so a Source handed to more than one tree must be safe for concurrent
// use. A bare *rand.Rand is not.
type Source interface {
	Float64() float64
}

// NewSource returns a deterministic PCG source that is safe for concurrent
// use. The draw sequence depends only on seed and the order of draws.
func NewSource(seed uint64) Source {
	return &lockedSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// globalSource draws from the package-level generator, which is safe for
// concurrent use.
type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// erc holds the lazily drawn value of an ephemeral random constant.
type erc struct {
	mu     sync.Mutex
	src    Source
	value  float64
	frozen bool
}

func newERC(src Source) *erc {
	if src == nil {
		src = globalSource{}
	}
	return &erc{src: src}
}

func frozenERC(v float64) *erc {
	return &erc{src: globalSource{}, value: v, frozen: true}
}

// get returns the constant's value, drawing and freezing it on first use.
func (c *erc) get() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.frozen {
		c.value = DrawConstant(c.src)
		c.frozen = true
	}
	return c.value
}

func (c *erc) isFrozen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frozen
}

// DrawConstant draws u from src and returns u*10-5 rounded half-to-even to
// three decimals. The result lies in [-5, 5].
func DrawConstant(src Source) float64 {
	u := src.Float64()
	return math.RoundToEven((u*10-5)*1000) / 1000
}
