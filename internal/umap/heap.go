package umap

type Match struct {
	Index int
	Dist  float64
}

// worse orders matches so the root of a MaxHeap is the one to evict:
// larger distance first, larger index on ties.
func (m Match) worse(o Match) bool {
	if m.Dist != o.Dist {
		return m.Dist > o.Dist
	}
	return m.Index > o.Index
}

// MaxHeap keeps the k closest matches seen so far with the farthest at
// the root.
type MaxHeap []Match

func (h *MaxHeap) Len() int { return len(*h) }

func (h *MaxHeap) Push(m Match) {
	*h = append(*h, m)
	h.up(len(*h) - 1)
}

// Offer inserts m if the heap has room or m beats the current root.
func (h *MaxHeap) Offer(m Match, k int) {
	if len(*h) < k {
		h.Push(m)
		return
	}
	if (*h)[0].worse(m) {
		h.Replace(m)
	}
}

func (h *MaxHeap) Replace(m Match) {
	(*h)[0] = m
	h.down(0, len(*h))
}

// Pop removes and returns the root.
func (h *MaxHeap) Pop() Match {
	old := *h
	n := len(old) - 1
	old[0], old[n] = old[n], old[0]
	h.down(0, n)
	m := old[n]
	*h = old[:n]
	return m
}

func (h *MaxHeap) up(j int) {
	for {
		i := (j - 1) / 2
		if i == j || !(*h)[j].worse((*h)[i]) {
			break
		}
		(*h)[i], (*h)[j] = (*h)[j], (*h)[i]
		j = i
	}
}

func (h *MaxHeap) down(i0, n int) {
	i := i0
	for {
		j1 := 2*i + 1
		if j1 >= n || j1 < 0 {
			break
		}
		j := j1
		if j2 := j1 + 1; j2 < n && (*h)[j2].worse((*h)[j1]) {
			j = j2
		}
		if !(*h)[j].worse((*h)[i]) {
			break
		}
		(*h)[i], (*h)[j] = (*h)[j], (*h)[i]
		i = j
	}
}
