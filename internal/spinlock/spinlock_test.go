package spinlock

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestLock_TryLock(t *testing.T) {
	t.Parallel()

	var l Lock
	require.True(t, l.TryLock())
	require.True(t, l.Locked())
	require.False(t, l.TryLock(), "second TryLock must fail while held")
	l.Unlock()
	require.False(t, l.Locked())
}

func TestLock_UnlockFreePanics(t *testing.T) {
	t.Parallel()

	var l Lock
	require.Panics(t, func() { l.Unlock() })
}

// Many goroutines increment a plain counter under the lock.
// Run with -race to catch missing happens-before edges.
func TestLock_MutualExclusion(t *testing.T) {
	t.Parallel()

	const workers, iters = 16, 2_000
	var (
		l     Lock
		count int
		g     errgroup.Group
	)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := 0; i < iters; i++ {
				l.Lock()
				count++
				l.Unlock()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, workers*iters, count)
}
