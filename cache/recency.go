package cache

import "fmt"

// recency is a circular doubly linked list over slot indices, ordered from
// most recently released (head) to least recently released (tail).
//
// Links are array positions. The last position is the sentinel: next of the
// sentinel is the head, prev of the sentinel is the tail. All methods
// require the pool's metadata lock.
type recency struct {
	next, prev []int
}

// newRecency links slots 0..n-1 by pushing each at the head in turn, so
// slot n-1 starts at the head and slot 0 at the tail.
func newRecency(n int) recency {
	r := recency{next: make([]int, n+1), prev: make([]int, n+1)}
	s := n
	r.next[s], r.prev[s] = s, s
	for i := 0; i < n; i++ {
		r.pushFront(i)
	}
	return r
}

func (r *recency) sentinel() int { return len(r.next) - 1 }

// front returns the head slot, or the sentinel if the list is empty.
func (r *recency) front() int { return r.next[r.sentinel()] }

// back returns the tail slot, or the sentinel if the list is empty.
func (r *recency) back() int { return r.prev[r.sentinel()] }

func (r *recency) unlink(i int) {
	p, n := r.prev[i], r.next[i]
	r.next[p] = n
	r.prev[n] = p
	r.next[i], r.prev[i] = i, i
}

func (r *recency) pushFront(i int) {
	s := r.sentinel()
	h := r.next[s]
	r.next[i], r.prev[i] = h, s
	r.prev[h] = i
	r.next[s] = i
}

// moveToFront relinks i at the head.
func (r *recency) moveToFront(i int) {
	if r.front() == i {
		return
	}
	r.unlink(i)
	r.pushFront(i)
}

// order returns slot indices from head to tail.
func (r *recency) order() []int {
	out := make([]int, 0, r.sentinel())
	for i := r.front(); i != r.sentinel(); i = r.next[i] {
		out = append(out, i)
	}
	return out
}

// check verifies that the list is circular, that prev mirrors next and that
// every slot appears exactly once.
func (r *recency) check() error {
	s := r.sentinel()
	seen := make([]bool, s)
	count := 0
	for i, steps := s, 0; ; steps++ {
		if steps > s {
			return fmt.Errorf("recency: cycle does not return to sentinel")
		}
		n := r.next[i]
		if r.prev[n] != i {
			return fmt.Errorf("recency: prev[%d]=%d, want %d", n, r.prev[n], i)
		}
		if n == s {
			break
		}
		if seen[n] {
			return fmt.Errorf("recency: slot %d linked twice", n)
		}
		seen[n] = true
		count++
		i = n
	}
	if count != s {
		return fmt.Errorf("recency: %d slots linked, want %d", count, s)
	}
	return nil
}
