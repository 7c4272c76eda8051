package trig

import "github.com/p7r0x7/chathash"

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// Backend runs the digest's round function, rotates, XORs and input reads as trigger routines.
// Every routine is compiled once, in NewBackend; the methods only move operands in and out of
// registers and run them.
type Backend struct {
	m *Machine
	s scratch
	r *reader

	v0, v1, v2, v3, x, y Var

	round, xor Routine
	rotl       [32]Routine
}

var _ chathash.Backend = (*Backend)(nil)

func NewBackend(m *Machine) *Backend {
	b := &Backend{m: m, s: newScratch(m)}
	b.v0, b.v1, b.v2, b.v3, b.x, b.y = m.Var(), m.Var(), m.Var(), m.Var(), m.Var(), m.Var()
	b.r = newReader(m, b.s)

	s, v0, v1, v2, v3 := b.s, b.v0, b.v1, b.v2, b.v3
	b.round = cat(
		do(v0.Add(v1), v2.Add(v3)),
		s.rotl(v1, chathash.R1), s.rotl(v3, chathash.R2),
		s.xor(v1, v0), s.xor(v3, v2),
		s.rotl(v0, chathash.R3),
		do(v2.Add(v1), v0.Add(v3)),
		s.rotl(v1, chathash.R4), s.rotl(v3, chathash.R5),
		s.xor(v1, v2), s.xor(v3, v0),
		s.rotl(v2, chathash.R6),
	)
	b.xor = s.xor(b.x, b.y)
	for i := uint(1); i < 32; i++ {
		b.rotl[i] = s.rotl(b.x, i)
	}
	return b
}

func (b *Backend) Machine() *Machine { return b.m }

// Seeks reports how many times the byte cursor has been repositioned.
func (b *Backend) Seeks() uint32 { return b.m.Get(b.r.seeks) }

func (b *Backend) Round(st *chathash.State) {
	m := b.m
	m.Set(b.v0, st.V0)
	m.Set(b.v1, st.V1)
	m.Set(b.v2, st.V2)
	m.Set(b.v3, st.V3)
	m.Run(b.round)
	st.V0, st.V1, st.V2, st.V3 = m.Get(b.v0), m.Get(b.v1), m.Get(b.v2), m.Get(b.v3)
}

func (b *Backend) Rotl(a uint32, n uint) uint32 {
	if n == 0 || n > 31 {
		panic("trig: rotate distance out of range")
	}
	b.m.Set(b.x, a)
	b.m.Run(b.rotl[n])
	return b.m.Get(b.x)
}

func (b *Backend) Xor(x, y uint32) uint32 {
	b.m.Set(b.x, x)
	b.m.Set(b.y, y)
	b.m.Run(b.xor)
	return b.m.Get(b.x)
}

func (b *Backend) ReadWord(base, length, off uint32) (uint32, uint32) {
	return b.r.wordAt(b.m, base, length, off)
}
