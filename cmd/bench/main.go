// Command bench runs a synthetic block workload against the buffer cache and
// exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/blockcache/cache"
	"github.com/IvanBrykalov/blockcache/device"
	pmet "github.com/IvanBrykalov/blockcache/metrics/prom"
)

const benchDev device.DeviceID = 1

func main() {
	// ---- Flags ----
	var (
		slots     = flag.Int("slots", cache.DefaultSlots, "number of cache slots")
		blockSize = flag.Int("bs", cache.DefaultBlockSize, "block size in bytes")
		blocks    = flag.Uint("blocks", 1<<16, "device size in blocks")
		file      = flag.String("file", "", "back the device with this file (empty = ramdisk)")

		workers  = flag.Int("workers", runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		writePct = flag.Int("writes", 20, "write percentage [0..100]")

		zipfS   = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV   = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed    = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		compare = flag.Int("compare", 0, "replay this many accesses through golang-lru for an ideal hit rate (0 = off)")

		logLevel    = flag.String("log.level", "info", "log level: debug | info | warn | error")
		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr; empty = disabled")
	)
	flag.Parse()

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	logger = level.NewFilter(logger, level.Allow(level.ParseDefault(*logLevel, level.InfoValue())))

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			level.Info(logger).Log("msg", "serving pprof", "addr", *pprofAddr)
			level.Error(logger).Log("msg", "pprof server stopped", "err", http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	var metrics cache.Metrics = cache.NoopMetrics{}
	if *metricsAddr != "" {
		metrics = pmet.New(nil, "blockcache", "bench", nil)
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			level.Info(logger).Log("msg", "serving metrics", "addr", *metricsAddr)
			level.Error(logger).Log("msg", "metrics server stopped", "err", http.ListenAndServe(*metricsAddr, nil))
		}()
	}

	// ---- Device + cache ----
	nblocks, err := deviceBlocks(*blocks)
	if err != nil {
		level.Error(logger).Log("msg", "invalid -blocks", "err", err)
		os.Exit(2)
	}
	bd, err := openDevice(*file, *blockSize, nblocks)
	if err != nil {
		level.Error(logger).Log("msg", "failed to open device", "err", err)
		os.Exit(1)
	}
	defer func() { _ = bd.Close() }()

	tbl := device.NewTable()
	if err := tbl.Mount(benchDev, bd); err != nil {
		level.Error(logger).Log("msg", "failed to mount device", "err", err)
		os.Exit(1)
	}
	c, err := cache.New(cache.Options{
		Slots:     *slots,
		BlockSize: *blockSize,
		Device:    tbl,
		Metrics:   metrics,
		Logger:    log.With(logger, "component", "cache"),
	})
	if err != nil {
		level.Error(logger).Log("msg", "failed to create cache", "err", err)
		os.Exit(1)
	}

	// ---- Load generation ----
	w := workload{
		c:        c,
		writePct: *writePct,
		keysMax:  uint64(nblocks - 1),
		zipfS:    *zipfS,
		zipfV:    *zipfV,
		seed:     *seed,
	}
	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}
	if workersN > *slots {
		level.Warn(logger).Log("msg", "more workers than slots; expect exhaustion", "workers", workersN, "slots", *slots)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	level.Info(logger).Log("msg", "starting workload", "workers", workersN, "slots", *slots, "duration", *duration, "seed", *seed)
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for id := 0; id < workersN; id++ {
		g.Go(func() error { return w.run(gctx, id) })
	}
	if err := g.Wait(); err != nil {
		level.Error(logger).Log("msg", "workload failed", "err", err)
		os.Exit(1)
	}
	elapsed := time.Since(start)

	// ---- Report ----
	st := c.Stats()
	ops := w.ops.Load()
	hitRate := 0.0
	if lookups := st.Hits + st.Misses; lookups > 0 {
		hitRate = float64(st.Hits) / float64(lookups) * 100
	}

	fmt.Printf("slots=%d bs=%d blocks=%d workers=%d dur=%v seed=%d\n",
		*slots, *blockSize, nblocks, workersN, elapsed, *seed)
	fmt.Printf("ops=%d (%.0f ops/s)  writes=%d  exhausted=%d\n",
		ops, float64(ops)/elapsed.Seconds(), w.writes.Load(), w.exhausted.Load())
	fmt.Printf("hits=%d  misses=%d  evictions=%d  hit-rate=%.2f%%\n",
		st.Hits, st.Misses, st.Evictions, hitRate)
	fmt.Printf("device reads=%d  writes=%d  cached=%d/%d\n",
		st.Reads, st.Writes, st.Cached, st.Slots)

	if *compare > 0 {
		ideal, err := idealHitRate(*seed, *zipfS, *zipfV, uint64(nblocks-1), *compare, *slots)
		if err != nil {
			level.Error(logger).Log("msg", "comparison failed", "err", err)
			os.Exit(1)
		}
		fmt.Printf("golang-lru hit-rate over %d accesses=%.2f%%\n", *compare, ideal*100)
	}
}

// deviceBlocks checks the -blocks flag: a device needs at least one block and
// block numbers are 32 bits wide.
func deviceBlocks(n uint) (uint32, error) {
	if n == 0 || uint64(n) > math.MaxUint32 {
		return 0, fmt.Errorf("device size must be in [1, %d] blocks, got %d", uint64(math.MaxUint32), n)
	}
	return uint32(n), nil
}

func openDevice(path string, bs int, n uint32) (device.BlockDevice, error) {
	if path == "" {
		return device.NewRamdisk(bs, n), nil
	}
	return device.OpenFile(path, bs, n)
}

// workload drives Read/Write/Release cycles against a cache.
type workload struct {
	c        *cache.Cache
	writePct int
	keysMax  uint64
	zipfS    float64
	zipfV    float64
	seed     int64

	ops, writes, exhausted atomic.Uint64
}

// run loops until ctx is done. Exhaustion is counted, not fatal, since more
// workers than slots is a legitimate configuration to measure.
func (w *workload) run(ctx context.Context, id int) error {
	// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
	r := rand.New(rand.NewSource(w.seed + int64(id)*9973))
	z := rand.NewZipf(r, w.zipfS, w.zipfV, w.keysMax)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n := device.BlockNo(z.Uint64())
		b, err := w.c.Read(benchDev, n)
		if errors.Is(err, cache.ErrResourceExhausted) {
			w.exhausted.Add(1)
			runtime.Gosched()
			continue
		}
		if err != nil {
			return err
		}
		w.ops.Add(1)

		if int(r.Int31n(100)) < w.writePct {
			d := b.Data()
			d[0]++
			if err := b.Write(); err != nil {
				_ = b.Release()
				return err
			}
			w.writes.Add(1)
		}
		if err := b.Release(); err != nil {
			return err
		}
	}
}
