package cache

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/blockcache/device"
)

// Workers increment a counter stored in random blocks, each increment a
// read-modify-write under the block's Buf followed by a write-through.
// Any slot shared by two keys, or two slots caching one key, loses updates.
// Should pass under `-race` without detector reports.
func TestRace_CountersSerialize(t *testing.T) {
	workers := 4 * runtime.GOMAXPROCS(0)
	const (
		iters    = 300
		keyspace = 24
	)
	// Each worker holds at most one Buf, so a free slot always exists.
	env := newTestEnv(t, workers)
	c := env.c

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			r := rand.New(rand.NewSource(int64(w) * 9973))
			for i := 0; i < iters; i++ {
				n := device.BlockNo(r.Intn(keyspace))
				b, err := c.Read(testDev, n)
				if err != nil {
					return err
				}
				d := b.Data()
				binary.LittleEndian.PutUint64(d, binary.LittleEndian.Uint64(d)+1)
				if err := b.Write(); err != nil {
					return err
				}
				if err := b.Release(); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var total uint64
	buf := make([]byte, testBS)
	for n := device.BlockNo(0); n < keyspace; n++ {
		require.NoError(t, env.disk.ReadBlock(n, buf))
		total += binary.LittleEndian.Uint64(buf)
	}
	require.EqualValues(t, workers*iters, total)
	require.Equal(t, 0, c.Stats().Busy)
	checkPool(t, c)
}

// Concurrent Reads of one key all land in the same slot.
func TestRace_SameKeyOneSlot(t *testing.T) {
	const goroutines = 64
	env := newTestEnv(t, 4)
	c := env.c

	slots := make(chan int, goroutines)
	start := make(chan struct{})
	var g errgroup.Group
	for i := 0; i < goroutines; i++ {
		g.Go(func() error {
			<-start
			b, err := c.Read(testDev, 77)
			if err != nil {
				return err
			}
			slots <- b.i
			return b.Release()
		})
	}
	close(start)
	require.NoError(t, g.Wait())
	close(slots)

	first := <-slots
	for i := range slots {
		require.Equal(t, first, i)
	}
	reads, _ := env.disk.Counts()
	require.EqualValues(t, 1, reads, "one load serves every reader")
	checkPool(t, c)
}

// Pin/Unpin/Release from many goroutines keep reference counts balanced.
func TestRace_PinUnpin(t *testing.T) {
	workers := 2 * runtime.GOMAXPROCS(0)
	env := newTestEnv(t, workers+1)
	c := env.c

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			n := device.BlockNo(w % 3)
			for i := 0; i < 200; i++ {
				b, err := c.Read(testDev, n)
				if err != nil {
					return err
				}
				if err := b.Pin(); err != nil {
					return err
				}
				if err := b.Release(); err != nil {
					return err
				}
				b, err = c.Read(testDev, n)
				if err != nil {
					return err
				}
				if err := b.Unpin(); err != nil {
					return fmt.Errorf("unpin block %d: %w", n, err)
				}
				if err := b.Release(); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, 0, c.Stats().Busy)
	checkPool(t, c)
}
