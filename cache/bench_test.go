package cache

import (
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/IvanBrykalov/blockcache/device"
)

func newBenchCache(b *testing.B, slots int) *Cache {
	b.Helper()
	tbl := device.NewTable()
	if err := tbl.Mount(testDev, device.NewRamdisk(testBS, 4096)); err != nil {
		b.Fatal(err)
	}
	c, err := New(Options{Slots: slots, BlockSize: testBS, Device: tbl})
	if err != nil {
		b.Fatal(err)
	}
	return c
}

// benchmarkRead runs Read/Release over a keyspace from parallel workers.
// keys <= slots keeps the working set resident (hit path); a larger
// keyspace exercises eviction and device loads.
func benchmarkRead(b *testing.B, slots, keys int) {
	c := newBenchCache(b, slots)

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		for pb.Next() {
			buf, err := c.Read(testDev, device.BlockNo(r.Intn(keys)))
			if err != nil {
				b.Error(err)
				return
			}
			if err := buf.Release(); err != nil {
				b.Error(err)
				return
			}
		}
	})
}

func BenchmarkCache_ReadHit(b *testing.B)  { benchmarkRead(b, 1024, 512) }
func BenchmarkCache_ReadMiss(b *testing.B) { benchmarkRead(b, 256, 4096) }
