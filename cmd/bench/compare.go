package main

import (
	"math/rand"

	lru "github.com/hashicorp/golang-lru/v2"
)

// idealHitRate replays n Zipf-distributed accesses, single-threaded, through
// a golang-lru cache of the given size. The result is the hit rate a plain
// LRU of that size achieves on the same distribution, with no contention.
func idealHitRate(seed int64, s, v float64, keysMax uint64, n, size int) (float64, error) {
	l, err := lru.New[uint64, struct{}](size)
	if err != nil {
		return 0, err
	}
	z := rand.NewZipf(rand.New(rand.NewSource(seed)), s, v, keysMax)

	hits := 0
	for i := 0; i < n; i++ {
		k := z.Uint64()
		if _, ok := l.Get(k); ok {
			hits++
			continue
		}
		l.Add(k, struct{}{})
	}
	if n == 0 {
		return 0, nil
	}
	return float64(hits) / float64(n), nil
}
