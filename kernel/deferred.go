package kernel

import "container/heap"

// deferredEntry is a task activation armed for a future cycle.
type deferredEntry struct {
	task TaskID
	at   Instant
	msg  Message
	seq  uint32
}

// deferredHeap orders entries by fire cycle, then by insertion order.
// Its backing array is sized once; Push never grows it past that.
type deferredHeap []deferredEntry

func (h deferredHeap) Len() int { return len(h) }

func (h deferredHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at.Before(h[j].at)
	}
	return int32(h[i].seq-h[j].seq) < 0
}

func (h deferredHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *deferredHeap) Push(x any) { *h = append(*h, x.(deferredEntry)) }

func (h *deferredHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = deferredEntry{}
	*h = old[:n-1]
	return e
}

type deferredQueue struct {
	h   deferredHeap
	seq uint32
}

func newDeferredQueue(capacity int) deferredQueue {
	return deferredQueue{h: make(deferredHeap, 0, capacity)}
}

func (q *deferredQueue) len() int { return q.h.Len() }

func (q *deferredQueue) full() bool { return len(q.h) == cap(q.h) }

func (q *deferredQueue) insert(task TaskID, at Instant, msg Message) bool {
	if q.full() {
		return false
	}
	q.seq++
	heap.Push(&q.h, deferredEntry{task: task, at: at, msg: msg, seq: q.seq})
	return true
}

// next returns the earliest fire cycle.
func (q *deferredQueue) next() (Instant, bool) {
	if len(q.h) == 0 {
		return 0, false
	}
	return q.h[0].at, true
}

// popDue removes the earliest entry if it is due at now.
func (q *deferredQueue) popDue(now Instant) (deferredEntry, bool) {
	if len(q.h) == 0 || !q.h[0].at.Reached(now) {
		return deferredEntry{}, false
	}
	return heap.Pop(&q.h).(deferredEntry), true
}
