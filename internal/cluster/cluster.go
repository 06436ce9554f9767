// Package cluster implements the byte/frame/word data model the rest of
// brop builds payloads out of: a single byte, a fixed 8-byte little-endian
// stack slot ("Frame"), a variable-length run of bytes ("Word"), and a
// tagged union over the three ("Cluster") used to append any of them onto
// a growing payload.
package cluster

import "fmt"

// Byte is a single stack byte.
type Byte = uint8

// OverflowBufferSize is the size of the buffer a probe reads a reply into.
const OverflowBufferSize = 200

// Frame is an 8-byte little-endian value occupying one x86_64 stack slot.
type Frame [8]byte

// FrameFromUint64 builds a Frame from its little-endian encoding of u.
func FrameFromUint64(u uint64) Frame {
	var f Frame
	for i := 0; i < 8; i++ {
		f[i] = byte(u >> (8 * i))
	}
	return f
}

// FrameFromBytes builds a Frame from up to 8 bytes, zero-padding the rest.
func FrameFromBytes(b []byte) Frame {
	var f Frame
	n := len(b)
	if n > 8 {
		n = 8
	}
	copy(f[:n], b[:n])
	return f
}

// Uint64 decodes the frame as a little-endian u64.
func (f Frame) Uint64() uint64 {
	var u uint64
	for i := 0; i < 8; i++ {
		u |= uint64(f[i]) << (8 * i)
	}
	return u
}

// Add returns f + rhs with wraparound u64 arithmetic.
func (f Frame) Add(rhs uint64) Frame {
	return FrameFromUint64(f.Uint64() + rhs)
}

// Sub returns f - rhs with wraparound u64 arithmetic.
func (f Frame) Sub(rhs uint64) Frame {
	return FrameFromUint64(f.Uint64() - rhs)
}

// And returns f & rhs.
func (f Frame) And(rhs uint64) Frame {
	return FrameFromUint64(f.Uint64() & rhs)
}

// Bytes returns the frame's 8 bytes as a slice.
func (f Frame) Bytes() []byte {
	return append([]byte(nil), f[:]...)
}

// String renders the frame the way the original Rust client does: a
// zero-padded, 0x-prefixed 16-digit hex number.
func (f Frame) String() string {
	return fmt.Sprintf("0x%016X", f.Uint64())
}

// Word is a variable-length sequence of stack bytes.
type Word []byte

// String renders a hex dump: two hex digits per byte, a double space every
// 8 bytes, a newline every 16 — matching the original client's Display impl.
func (w Word) String() string {
	var out []byte
	for i, b := range w {
		out = append(out, []byte(fmt.Sprintf("%02X", b))...)
		if i == len(w)-1 {
			break
		}
		switch {
		case i%16 == 15:
			out = append(out, '\n')
		case i%8 == 7:
			out = append(out, ' ', ' ')
		default:
			out = append(out, ' ')
		}
	}
	return string(out)
}

// Kind discriminates the variants of a Cluster.
type Kind int

const (
	KindByte Kind = iota
	KindFrame
	KindWord
)

// Cluster is a tagged union over Byte, Frame, and Word, used as the
// argument to Append so callers can grow a payload with any of the three
// without the caller needing to know which kind it is appending.
type Cluster struct {
	Kind  Kind
	Byte  Byte
	Frame Frame
	Word  Word
}

// ByteCluster wraps a single byte as a Cluster.
func ByteCluster(b Byte) Cluster { return Cluster{Kind: KindByte, Byte: b} }

// FrameCluster wraps a Frame as a Cluster.
func FrameCluster(f Frame) Cluster { return Cluster{Kind: KindFrame, Frame: f} }

// WordCluster wraps a Word as a Cluster.
func WordCluster(w Word) Cluster { return Cluster{Kind: KindWord, Word: w} }

// Append grows base with the contents of c and returns the result.
func Append(base []byte, c Cluster) []byte {
	switch c.Kind {
	case KindByte:
		return append(base, c.Byte)
	case KindFrame:
		return append(base, c.Frame[:]...)
	case KindWord:
		return append(base, c.Word...)
	default:
		return base
	}
}
