//go:build !tinygo

package hal

import (
	"bufio"
	"io"
	"sync"
)

const serialBufferSize = 256

// hostSerial receives from a reader, stdin by default, and transmits to a
// writer. Bytes arriving while the receive buffer is full are dropped.
type hostSerial struct {
	r io.Reader

	wmu sync.Mutex
	w   io.Writer

	mu      sync.Mutex
	rx      []byte
	dropped uint64
	irq     func()
	started bool
}

func newHostSerial(r io.Reader, w io.Writer) *hostSerial {
	return &hostSerial{r: r, w: w, rx: make([]byte, 0, serialBufferSize)}
}

func (s *hostSerial) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rx)
}

func (s *hostSerial) ReadByte() (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.rx) == 0 {
		return 0, io.EOF
	}
	c := s.rx[0]
	s.rx = append(s.rx[:0], s.rx[1:]...)
	return c, nil
}

func (s *hostSerial) Write(p []byte) (int, error) {
	if s.w == nil {
		return 0, ErrNotImplemented
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return s.w.Write(p)
}

// SetInterrupt registers fn and starts the receiver on first use.
func (s *hostSerial) SetInterrupt(fn func()) {
	s.mu.Lock()
	s.irq = fn
	start := !s.started && s.r != nil
	s.started = true
	s.mu.Unlock()

	if start {
		go s.receive()
	}
}

func (s *hostSerial) receive() {
	br := bufio.NewReader(s.r)
	for {
		c, err := br.ReadByte()
		if err != nil {
			return
		}
		s.feed(c)
	}
}

// feed appends one received byte and raises the interrupt.
func (s *hostSerial) feed(c byte) {
	s.mu.Lock()
	if len(s.rx) < serialBufferSize {
		s.rx = append(s.rx, c)
	} else {
		s.dropped++
	}
	irq := s.irq
	s.mu.Unlock()

	if irq != nil {
		irq()
	}
}
