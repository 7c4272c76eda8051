package chathash

import "math/bits"

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.
// The native backend: what a machine with a barrel shifter does.

// Native is the reference Backend. It reads its input through a Reader over mem.
type Native struct {
	r Reader
}

func NewNative(mem Memory) *Native { return &Native{r: Reader{mem: mem}} }

func (n *Native) Round(s *State) {
	v0, v1, v2, v3 := s.V0, s.V1, s.V2, s.V3
	v0 += v1
	v2 += v3
	v1 = bits.RotateLeft32(v1, R1)
	v3 = bits.RotateLeft32(v3, R2)
	v1 ^= v0
	v3 ^= v2
	v0 = bits.RotateLeft32(v0, R3)
	v2 += v1
	v0 += v3
	v1 = bits.RotateLeft32(v1, R4)
	v3 = bits.RotateLeft32(v3, R5)
	v1 ^= v2
	v3 ^= v0
	v2 = bits.RotateLeft32(v2, R6)
	s.V0, s.V1, s.V2, s.V3 = v0, v1, v2, v3
}

func (n *Native) Rotl(a uint32, b uint) uint32 {
	if b == 0 || b > 31 {
		panic("chathash: rotate distance out of range")
	}
	return a<<b | a>>(32-b)
}

func (n *Native) Xor(a, b uint32) uint32 { return a ^ b }

func (n *Native) ReadWord(base, length, off uint32) (uint32, uint32) {
	return n.r.Word(base, length, off)
}

// Reader is a byte cursor over an indirectly addressed buffer. It remembers the last base it was
// pointed at; consecutive words of the same buffer continue from the cursor instead of seeking.
type Reader struct {
	mem         Memory
	base, pos   uint32
	seeked      bool
	Seeks       int /* number of times the cursor was moved, for inspection */
	word, wAddr uint32
	cached      bool
}

func NewReader(mem Memory) *Reader { return &Reader{mem: mem} }

// Word assembles the next little-endian word of the length-byte buffer at base, starting at
// offset off, and returns it with the offset of the following word.
func (r *Reader) Word(base, length, off uint32) (uint32, uint32) {
	if !r.seeked || base != r.base || r.pos != base+off {
		r.seek(base, off)
	}

	var out uint32
	for shift, t := uint(0), off; ; shift += 8 {
		if t >= length {
			return out | (length&0xff)<<24, length + 1
		}
		out |= uint32(r.readByte()) << shift
		if t++; t >= off+4 {
			return out, t
		}
	}
}

func (r *Reader) seek(base, off uint32) {
	r.base, r.pos, r.seeked, r.cached = base, base+off, true, false
	r.Seeks++
}

func (r *Reader) readByte() byte {
	addr := r.pos &^ 3
	if !r.cached || addr != r.wAddr {
		r.word, r.wAddr, r.cached = r.mem.Load(addr), addr, true
	}
	b := byte(r.word >> (8 * (r.pos & 3)))
	r.pos++
	return b
}
