package term

import "wiohid/kernel"

// SegmentSize is the capacity of one TextSegment.
const SegmentSize = kernel.MaxPayloadBytes

// TextSegment is a fixed-length chunk of text queued for the terminal.
// Text beyond SegmentSize bytes is truncated.
type TextSegment struct {
	buf [SegmentSize]byte
	n   uint8
}

// Segment copies s, truncated to SegmentSize bytes.
func Segment(s string) TextSegment {
	var t TextSegment
	t.n = uint8(copy(t.buf[:], s))
	return t
}

// SegmentBytes copies b, truncated to SegmentSize bytes.
func SegmentBytes(b []byte) TextSegment {
	var t TextSegment
	t.n = uint8(copy(t.buf[:], b))
	return t
}

func (t TextSegment) Len() int       { return int(t.n) }
func (t TextSegment) String() string { return string(t.buf[:t.n]) }

// Bytes returns the used part of the buffer.
func (t *TextSegment) Bytes() []byte { return t.buf[:t.n] }

// MessageKind tags activations that carry a TextSegment.
const MessageKind uint8 = 0x7E

// Message encodes t as a task payload.
func (t TextSegment) Message() kernel.Message {
	return kernel.MessageOf(MessageKind, t.buf[:t.n])
}

// SegmentFrom decodes a payload built by TextSegment.Message.
func SegmentFrom(m kernel.Message) (TextSegment, bool) {
	if m.Kind != MessageKind {
		return TextSegment{}, false
	}
	return SegmentBytes(m.Payload()), true
}
