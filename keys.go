package chathash

import (
	"encoding/binary"
	"fmt"
	"github.com/aead/chacha20/chacha"
	"github.com/zeebo/blake3"
	"io"
	"strconv"
	"strings"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// Keys is the pair of 32-bit words every digest of one compiled configuration is keyed with.
// They are drawn once and must be the same on both backends.
type Keys struct {
	K0, K1 uint32
}

// NewKeys draws a key pair from r, normally crypto/rand.Reader.
func NewKeys(r io.Reader) (Keys, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return Keys{}, fmt.Errorf("chathash: drawing keys: %w", err)
	}
	return Keys{binary.LittleEndian.Uint32(b[:4]), binary.LittleEndian.Uint32(b[4:])}, nil
}

// SeededKeys derives a reproducible key pair from an arbitrary seed: the seed is compressed
// with BLAKE3 into a ChaCha20 key whose first keystream bytes become the two words.
func SeededKeys(seed []byte) Keys {
	key, nonce, b := blake3.Sum256(seed), [chacha.NonceSize]byte{}, [8]byte{}
	chacha.XORKeyStream(b[:], b[:], nonce[:], key[:], 20)
	return Keys{binary.LittleEndian.Uint32(b[:4]), binary.LittleEndian.Uint32(b[4:])}
}

// ParseKeys reads "k0,k1" with base-prefixed integers, e.g. "0x03020100,0x07060504".
func ParseKeys(s string) (Keys, error) {
	k0, k1, ok := strings.Cut(s, ",")
	if !ok {
		return Keys{}, fmt.Errorf("chathash: keys %q: want k0,k1", s)
	}
	a, err := strconv.ParseUint(strings.TrimSpace(k0), 0, 32)
	if err != nil {
		return Keys{}, fmt.Errorf("chathash: keys %q: %w", s, err)
	}
	b, err := strconv.ParseUint(strings.TrimSpace(k1), 0, 32)
	if err != nil {
		return Keys{}, fmt.Errorf("chathash: keys %q: %w", s, err)
	}
	return Keys{uint32(a), uint32(b)}, nil
}

func (k Keys) String() string { return fmt.Sprintf("0x%08x,0x%08x", k.K0, k.K1) }
