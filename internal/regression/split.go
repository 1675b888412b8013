package regression

import (
	"math"
	"math/rand/v2"
)

// SplitIndices shuffles 0..n-1 with a seeded source and returns train and test
// index sets. The test set holds ceil(n*testRatio) rows, and at least one row
// stays in training.
func SplitIndices(n int, testRatio float64, seed uint64) (train, test []int) {
	if n <= 0 {
		return nil, nil
	}
	nTest := int(math.Ceil(float64(n) * testRatio))
	if nTest < 0 {
		nTest = 0
	}
	if nTest > n-1 {
		nTest = n - 1
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	perm := rng.Perm(n)
	test = append([]int(nil), perm[:nTest]...)
	train = append([]int(nil), perm[nTest:]...)
	return train, test
}
