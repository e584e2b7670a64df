package main

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/blockcache/cache"
	"github.com/IvanBrykalov/blockcache/device"
)

func TestIdealHitRate(t *testing.T) {
	t.Parallel()

	// Keyspace fits the cache: only the first touch of each key misses.
	all, err := idealHitRate(1, 1.1, 1, 7, 10_000, 8)
	require.NoError(t, err)
	require.Greater(t, all, 0.99)

	small, err := idealHitRate(1, 1.1, 1, 1<<20, 10_000, 8)
	require.NoError(t, err)
	require.Less(t, small, all)

	_, err = idealHitRate(1, 1.1, 1, 7, 10, 0)
	require.Error(t, err, "golang-lru rejects a zero size")
}

func TestWorkload_Run(t *testing.T) {
	t.Parallel()

	bd, err := openDevice("", 64, 256)
	require.NoError(t, err)
	tbl := device.NewTable()
	require.NoError(t, tbl.Mount(benchDev, bd))
	c, err := cache.New(cache.Options{Slots: 4, BlockSize: 64, Device: tbl})
	require.NoError(t, err)

	w := workload{c: c, writePct: 50, keysMax: 255, zipfS: 1.1, zipfV: 1, seed: 3}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var g errgroup.Group
	for id := 0; id < 4; id++ {
		g.Go(func() error { return w.run(ctx, id) })
	}
	require.NoError(t, g.Wait())

	st := c.Stats()
	require.Positive(t, w.ops.Load())
	require.Zero(t, w.exhausted.Load(), "one Buf per worker never exhausts")
	require.Equal(t, w.ops.Load(), st.Hits+st.Misses)
	require.Equal(t, w.writes.Load(), st.Writes)
	require.Equal(t, 0, st.Busy)
}

func TestDeviceBlocks(t *testing.T) {
	t.Parallel()

	n, err := deviceBlocks(1)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = deviceBlocks(math.MaxUint32)
	require.NoError(t, err)
	require.EqualValues(t, uint32(math.MaxUint32), n)

	_, err = deviceBlocks(0)
	require.Error(t, err, "zero blocks would wrap the Zipf key range")

	tooBig := uint64(math.MaxUint32) + 1
	_, err = deviceBlocks(uint(tooBig))
	require.Error(t, err, "block numbers past 32 bits must not truncate")
}
