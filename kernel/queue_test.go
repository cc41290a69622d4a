package kernel

import "testing"

func TestReadyQueueFIFO(t *testing.T) {
	q := newReadyQueue(2)
	if !q.push(activation{at: 1}) || !q.push(activation{at: 2}) {
		t.Fatal("push() = false on empty slots")
	}
	if q.push(activation{at: 3}) {
		t.Fatal("push() = true on a full queue")
	}
	for _, want := range []Instant{1, 2} {
		a, ok := q.pop()
		if !ok || a.at != want {
			t.Fatalf("pop() = %d, %v, want %d, true", a.at, ok, want)
		}
	}
	if _, ok := q.pop(); ok {
		t.Fatal("pop() on empty queue succeeded")
	}

	// The ring keeps working across many wraps of the indices.
	for i := 0; i < 100; i++ {
		q.push(activation{at: Instant(i)})
		if a, _ := q.pop(); a.at != Instant(i) {
			t.Fatalf("pop() = %d, want %d", a.at, i)
		}
	}
}

func TestDeferredQueueOrdersAcrossWrap(t *testing.T) {
	q := newDeferredQueue(3)
	q.insert(1, 0x10, Message{})
	q.insert(2, 0xFFFF_FFF0, Message{})
	q.insert(3, 0x10, Message{})
	if q.insert(4, 0, Message{}) {
		t.Fatal("insert() into a full queue succeeded")
	}

	if at, _ := q.next(); at != 0xFFFF_FFF0 {
		t.Fatalf("next() = %#x, want 0xfffffff0", uint32(at))
	}
	if _, ok := q.popDue(0xFFFF_FFEF); ok {
		t.Fatal("popDue() released an entry early")
	}

	var got []TaskID
	for {
		e, ok := q.popDue(0x10)
		if !ok {
			break
		}
		got = append(got, e.task)
	}
	if len(got) != 3 || got[0] != 2 || got[1] != 1 || got[2] != 3 {
		t.Fatalf("release order = %v, want [2 1 3]", got)
	}
}
