package kernel

type activation struct {
	msg Message
	at  Instant
}

// readyQueue is a fixed-capacity FIFO of activations. Storage is allocated
// once at kernel construction.
type readyQueue struct {
	head  uint32
	tail  uint32
	slots []activation
}

func newReadyQueue(capacity int) readyQueue {
	return readyQueue{slots: make([]activation, capacity)}
}

func (q *readyQueue) len() int { return int(q.head - q.tail) }

func (q *readyQueue) push(a activation) bool {
	if q.len() >= len(q.slots) {
		return false
	}
	q.slots[q.head%uint32(len(q.slots))] = a
	q.head++
	return true
}

func (q *readyQueue) pop() (activation, bool) {
	if q.tail == q.head {
		return activation{}, false
	}
	a := q.slots[q.tail%uint32(len(q.slots))]
	q.tail++
	return a, true
}
