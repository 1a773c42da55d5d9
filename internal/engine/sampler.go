package engine

import (
	"math/rand/v2"
	"sync"
)

// lockedRand serializes access to a seeded source shared by concurrent
// supply calls.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand(seed uint64) *lockedRand {
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// pairSampler draws indices of [0, n) uniformly without replacement. It is a
// Fisher-Yates shuffle over a virtual array that only remembers swapped
// slots, so memory grows with the number of draws rather than with n.
type pairSampler struct {
	n     int
	drawn int
	swaps map[int]int
	rng   *lockedRand
}

func newPairSampler(n int, rng *lockedRand) *pairSampler {
	return &pairSampler{n: n, swaps: make(map[int]int), rng: rng}
}

func (p *pairSampler) at(i int) int {
	if v, ok := p.swaps[i]; ok {
		return v
	}
	return i
}

// next returns the next index, or false once all n have been drawn.
func (p *pairSampler) next() (int, bool) {
	if p.drawn >= p.n {
		return 0, false
	}
	j := p.drawn + p.rng.IntN(p.n-p.drawn)
	v := p.at(j)
	p.swaps[j] = p.at(p.drawn)
	delete(p.swaps, p.drawn)
	p.drawn++
	return v, true
}
