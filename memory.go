package chathash

import (
	"encoding/binary"
	"github.com/dolthub/swiss"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.
// Address spaces the digest and the classifiers read from and write results into.

// Memory is a byte-addressed little-endian address space accessed in aligned 32-bit words.
// Load and Store ignore the low two bits of addr.
type Memory interface {
	Load(addr uint32) uint32
	Store(addr, v uint32)
}

// Bytes is a Memory whose address 0 is the first byte of the slice. Bytes past the end read as
// zero and are dropped on store.
type Bytes []byte

func (b Bytes) Load(addr uint32) uint32 {
	addr &^= 3
	if uint64(addr)+4 <= uint64(len(b)) {
		return binary.LittleEndian.Uint32(b[addr:])
	}
	var w [4]byte
	if uint64(addr) < uint64(len(b)) {
		copy(w[:], b[addr:])
	}
	return binary.LittleEndian.Uint32(w[:])
}

func (b Bytes) Store(addr, v uint32) {
	addr &^= 3
	var w [4]byte
	binary.LittleEndian.PutUint32(w[:], v)
	if uint64(addr) < uint64(len(b)) {
		copy(b[addr:], w[:])
	}
}

// Space is a sparse 4 GiB address space. Unwritten words read as zero.
type Space struct {
	words *swiss.Map[uint32, uint32]
}

func NewSpace() *Space { return &Space{words: swiss.NewMap[uint32, uint32](64)} }

func (s *Space) Load(addr uint32) uint32 {
	v, _ := s.words.Get(addr >> 2)
	return v
}

func (s *Space) Store(addr, v uint32) {
	if v == 0 {
		s.words.Delete(addr >> 2)
		return
	}
	s.words.Put(addr>>2, v)
}

// WriteBytes copies p into mem starting at the unaligned address addr.
func WriteBytes(mem Memory, addr uint32, p []byte) {
	for i := 0; i < len(p); {
		a := addr + uint32(i)
		w, sh := mem.Load(a), 8*(a&3)
		for ; sh < 32 && i < len(p); sh += 8 {
			w = w&^(0xff<<sh) | uint32(p[i])<<sh
			i++
		}
		mem.Store(a, w)
	}
}

// ReadBytes copies n bytes starting at the unaligned address addr out of mem.
func ReadBytes(mem Memory, addr, n uint32) []byte {
	p := make([]byte, n)
	for i := uint32(0); i < n; i++ {
		a := addr + i
		p[i] = byte(mem.Load(a) >> (8 * (a & 3)))
	}
	return p
}
