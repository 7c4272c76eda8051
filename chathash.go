package chathash

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.
// This file contains the execution-independent half of the keyed 32-bit ARX digest used to
// discriminate chat messages: the key schedule, the order in which words are absorbed, and
// finalization. Everything that touches a rotate, an XOR, or a byte of input is delegated to a
// Backend so that the same sequence can run natively or on a trigger machine.

const (
	R1, R2, R3, R4, R5, R6 = 7, 8, 16, 9, 11, 16

	kc1, kc2, kc3, kc4 = 0x736f6d65, 0x646f7261, 0x6c796765, 0x74656462

	wordRounds, finalRounds = 2, 4
	finalMark               = 0xff
)

// Distances lists every rotate distance the round function uses, in round order.
var Distances = [6]uint{R1, R2, R3, R4, R5, R6}

// State is the four-word internal state of one digest computation. It is reset by the key
// schedule at the start of every call and must not be shared between overlapping calls.
type State struct {
	V0, V1, V2, V3 uint32
}

// Schedule returns the initial state for a key pair.
func Schedule(k Keys) State {
	return State{k.K0 ^ kc1, k.K1 ^ kc2, k.K0 ^ kc3, k.K1 ^ kc4}
}

// Backend is the capability a Hasher needs from an execution model. The reference backend does
// all of this with native shifts; the constrained one in package trig may only add, subtract,
// compare and branch.
type Backend interface {
	// Round applies one ten-step ARX round to s.
	Round(s *State)
	// Rotl rotates a left by b bits, 0 < b < 32.
	Rotl(a uint32, b uint) uint32
	// Xor returns a^b.
	Xor(a, b uint32) uint32
	// ReadWord returns the little-endian word starting length-bounded offset off of the
	// buffer at base, and the offset of the next word. Once fewer than four bytes remain, the
	// word carries length mod 256 in its top byte and next is length+1.
	ReadWord(base, length, off uint32) (word, next uint32)
}

// Hasher runs the digest over buffers addressed through a Backend.
type Hasher struct {
	b Backend
}

func NewHasher(b Backend) *Hasher { return &Hasher{b: b} }

func (h *Hasher) Backend() Backend { return h.b }

// Hash computes the digest of the length bytes at base under k.
func (h *Hasher) Hash(base, length uint32, k Keys) uint32 {
	b, s := h.b, Schedule(k)

	/* One iteration more than there are whole words: the last word carries the length tag. */
	for off := uint32(0); off <= length; {
		var m uint32
		m, off = b.ReadWord(base, length, off)
		s.V3 = b.Xor(s.V3, m)
		for i := wordRounds; i > 0; i-- {
			b.Round(&s)
		}
		s.V0 = b.Xor(s.V0, m)
	}

	s.V2 = b.Xor(s.V2, finalMark)
	for i := finalRounds; i > 0; i-- {
		b.Round(&s)
	}
	return b.Xor(b.Xor(s.V0, s.V1), b.Xor(s.V2, s.V3))
}

// Sum32 returns the digest of msg under k using the reference backend.
func Sum32(msg []byte, k Keys) uint32 {
	return NewHasher(NewNative(Bytes(msg))).Hash(0, uint32(len(msg)), k)
}
