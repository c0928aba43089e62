package engine

import "math/rand/v2"

// bag is the 7-bag randomizer: every refill is an independent uniform
// permutation of the full kind set, so any 7 consecutive draws starting
// at a bag boundary contain each kind exactly once.
type bag struct {
	bag []Kind
	rng *rand.Rand
}

func newBag() *bag {
	b := &bag{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	b.refill()
	return b
}

func (b *bag) refill() {
	b.bag = append(b.bag[:0], Kinds[:]...)
	b.rng.Shuffle(len(b.bag), func(i, j int) {
		b.bag[i], b.bag[j] = b.bag[j], b.bag[i]
	})
}

func (b *bag) draw() Kind {
	if len(b.bag) == 0 {
		b.refill()
	}
	k := b.bag[0]
	b.bag = b.bag[1:]
	return k
}
