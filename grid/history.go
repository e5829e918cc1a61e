package grid

// History is a capacity-bounded ring of field snapshots. Pushing beyond the
// capacity evicts the oldest entry, so a long run keeps a sliding window of
// recent frames for replay or animation.
type History struct {
	snaps    [][][]float64
	capacity int
	head     int // index of the oldest entry
	size     int
}

func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		snaps:    make([][][]float64, capacity),
		capacity: capacity,
	}
}

func (h *History) Len() int { return h.size }

func (h *History) Push(snapshot [][]float64) {
	if h.size < h.capacity {
		h.snaps[(h.head+h.size)%h.capacity] = snapshot
		h.size++
		return
	}
	h.snaps[h.head] = snapshot
	h.head = (h.head + 1) % h.capacity
}

// At returns the i-th retained snapshot, 0 being the oldest.
func (h *History) At(i int) [][]float64 {
	if i < 0 || i >= h.size {
		return nil
	}
	return h.snaps[(h.head+i)%h.capacity]
}

// Latest returns the most recent snapshot, nil when empty.
func (h *History) Latest() [][]float64 {
	if h.size == 0 {
		return nil
	}
	return h.At(h.size - 1)
}
