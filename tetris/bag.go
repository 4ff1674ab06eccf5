package tetris

import "math/rand/v2"

// bag deals shapes with the 7-bag system: a shuffled permutation of all
// seven shapes is dealt in full before the next one starts, so no shape
// stays out of play for more than twelve draws.
// https://tetris.wiki/Random_Generator
type bag struct {
	shapes []Shape
}

func newBag() *bag {
	b := &bag{}
	b.refill()
	return b
}

func (b *bag) refill() {
	b.shapes = []Shape{I, J, L, O, S, T, Z}
	rand.Shuffle(len(b.shapes), func(i, j int) {
		b.shapes[i], b.shapes[j] = b.shapes[j], b.shapes[i]
	})
}

func (b *bag) draw() Shape {
	if len(b.shapes) == 0 {
		b.refill()
	}
	shape := b.shapes[0]
	b.shapes = b.shapes[1:]
	return shape
}
