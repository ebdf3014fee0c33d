package mot

// idPool hands out track identities.
// Retired identities are reused smallest first, otherwise the counter advances.
type idPool struct {
	next int
	free idHeap
}

func newIDPool() *idPool {
	return &idPool{
		next: 0,
		free: make(idHeap, 0),
	}
}

// acquire returns smallest free identity or the next counter value
func (pool *idPool) acquire() int {
	if pool.free.Len() > 0 {
		return pool.free.Pop()
	}
	id := pool.next
	pool.next++
	return id
}

// release returns identity to the free list. Caller must guarantee that no live track holds it.
func (pool *idPool) release(id int) {
	pool.free.Push(id)
}

// freeIDs returns sorted copy of currently free identities
func (pool *idPool) freeIDs() []int {
	cp := make(idHeap, len(pool.free))
	copy(cp, pool.free)
	ids := make([]int, 0, len(cp))
	for cp.Len() > 0 {
		ids = append(ids, cp.Pop())
	}
	return ids
}

func (pool *idPool) reset() {
	pool.next = 0
	pool.free = pool.free[:0]
}

// Copied from container/heap - https://golang.org/pkg/container/heap/
// Why make copy? Just want to avoid type conversion

type idHeap []int

func (h idHeap) Len() int           { return len(h) }
func (h idHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

// Push pushes the element x onto the heap.
// The complexity is O(log n) where n = h.Len().
func (h *idHeap) Push(x int) {
	*h = append(*h, x)
	h.up(h.Len() - 1)
}

// Pop removes and returns the minimum element (according to Less) from the heap.
// The complexity is O(log n) where n = h.Len().
func (h *idHeap) Pop() int {
	n := h.Len() - 1
	h.Swap(0, n)
	h.down(0, n)
	heapSize := len(*h)
	last := (*h)[heapSize-1]
	*h = (*h)[0 : heapSize-1]
	return last
}

func (h idHeap) up(j int) {
	for {
		i := (j - 1) / 2
		if i == j || !h.Less(j, i) {
			break
		}
		h.Swap(i, j)
		j = i
	}
}

func (h idHeap) down(i0, n int) bool {
	i := i0
	for {
		j1 := 2*i + 1
		if j1 >= n || j1 < 0 {
			break
		}
		j := j1
		if j2 := j1 + 1; j2 < n && h.Less(j2, j1) {
			j = j2
		}
		if !h.Less(j, i) {
			break
		}
		h.Swap(i, j)
		i = j
	}
	return i > i0
}
