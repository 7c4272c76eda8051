package chathash

import "hash"

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.
// This file contains a Go-specific API implementing the standard hash.Hash32 interface.

// Digest accumulates written bytes and digests them on Sum. Chat messages are short, so the
// whole message is kept rather than a running state; only the last word depends on the total
// length anyway.
type Digest struct {
	keys  Keys
	carry []byte
}

const blockSize = 4

func New(k Keys) hash.Hash32 { return &Digest{keys: k, carry: make([]byte, 0, 80)} }

func (d *Digest) Size() int { return 4 }

func (d *Digest) BlockSize() int { return blockSize }

func (d *Digest) Write(buf []byte) (int, error) {
	d.carry = append(d.carry, buf...)
	return len(buf), nil
}

func (d *Digest) Sum32() uint32 { return Sum32(d.carry, d.keys) }

/* Big-endian, like the standard library's 32-bit hashes. */
func (d *Digest) Sum(buf []byte) []byte {
	s := d.Sum32()
	return append(buf, byte(s>>24), byte(s>>16), byte(s>>8), byte(s))
}

func (d *Digest) Reset() {
	for i := range d.carry {
		d.carry[i] = 0
	}
	d.carry = d.carry[:0]
}
