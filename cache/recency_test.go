package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Slots are pushed at the head one by one, so the last slot leads.
func TestRecency_InitialOrder(t *testing.T) {
	t.Parallel()

	r := newRecency(4)
	require.NoError(t, r.check())
	require.Equal(t, []int{3, 2, 1, 0}, r.order())
	require.Equal(t, 3, r.front())
	require.Equal(t, 0, r.back())
}

func TestRecency_MoveToFront(t *testing.T) {
	t.Parallel()

	r := newRecency(4)
	r.moveToFront(0)
	require.Equal(t, []int{0, 3, 2, 1}, r.order())
	r.moveToFront(2)
	require.Equal(t, []int{2, 0, 3, 1}, r.order())
	r.moveToFront(2) // already at head
	require.Equal(t, []int{2, 0, 3, 1}, r.order())
	require.Equal(t, 1, r.back())
	require.NoError(t, r.check())
}

func TestRecency_SingleSlot(t *testing.T) {
	t.Parallel()

	r := newRecency(1)
	r.moveToFront(0)
	require.Equal(t, []int{0}, r.order())
	require.Equal(t, r.front(), r.back())
	require.NoError(t, r.check())
}

func TestRecency_CheckDetectsCorruption(t *testing.T) {
	t.Parallel()

	r := newRecency(3)
	r.prev[1] = 0 // break the mirror of next
	require.Error(t, r.check())

	r = newRecency(3)
	r.unlink(1) // a slot missing from the ring
	require.Error(t, r.check())
}

// Arbitrary sequences of moves must keep the ring intact and put the last
// moved slot at the head.
func FuzzRecency_MoveToFront(f *testing.F) {
	f.Add(uint8(4), []byte{0, 1, 2, 3})
	f.Add(uint8(1), []byte{0, 0, 0})
	f.Add(uint8(16), []byte{15, 0, 7, 7, 3, 15})

	f.Fuzz(func(t *testing.T, n uint8, moves []byte) {
		size := int(n%32) + 1
		r := newRecency(size)
		for _, m := range moves {
			i := int(m) % size
			r.moveToFront(i)
			if r.front() != i {
				t.Fatalf("front = %d after moving %d", r.front(), i)
			}
		}
		if err := r.check(); err != nil {
			t.Fatal(err)
		}
		if got := len(r.order()); got != size {
			t.Fatalf("order has %d slots, want %d", got, size)
		}
	})
}
