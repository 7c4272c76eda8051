package classify

import (
	"encoding/binary"
	"fmt"
	"github.com/minio/sha256-simd"
	"github.com/tmthrgd/go-hex"
	"io"
	"sort"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// Summary describes a compiled configuration the way an operator needs to wire conditions
// against it.
type Summary struct {
	Keys        string   `json:"keys"`
	Primary     string   `json:"primary"`
	Length      string   `json:"length,omitempty"`
	Pointer     string   `json:"pointer,omitempty"`
	Pattern     string   `json:"pattern,omitempty"`
	Patterns    []string `json:"patterns"`
	Messages    []string `json:"messages"`
	MinLen      int      `json:"minlen"`
	MaxLen      int      `json:"maxlen"`
	Total       int      `json:"total"`
	Fingerprint string   `json:"fingerprint"`
}

func addr(a uint32) string {
	if a == 0 {
		return ""
	}
	return fmt.Sprintf("0x%X", a)
}

func (c *Config) Summary() Summary {
	fp := c.Fingerprint()
	s := Summary{
		Keys:        c.Keys.String(),
		Primary:     addr(c.Addrs.Primary),
		Length:      addr(c.Addrs.Length),
		Pointer:     addr(c.Addrs.Pointer),
		Pattern:     addr(c.Addrs.Pattern),
		Patterns:    make([]string, 0, len(c.Patterns)),
		Messages:    make([]string, 0, c.Dict.Len()),
		MinLen:      c.Dict.MinLen,
		MaxLen:      c.Dict.MaxLen,
		Total:       c.Dict.Len(),
		Fingerprint: hex.EncodeToString(fp[:]),
	}
	for _, p := range c.Patterns {
		s.Patterns = append(s.Patterns, fmt.Sprintf("%s : %d", p, p.Code))
	}
	for _, e := range c.Dict.Entries() {
		s.Messages = append(s.Messages, fmt.Sprintf("%s : %d", e.Message, e.Code))
	}
	return s
}

// WriteTo prints the summary as the conditions a map maker copies into their triggers.
func (s Summary) WriteTo(w io.Writer) (int64, error) {
	var n int64
	p := func(format string, a ...interface{}) {
		m, _ := fmt.Fprintf(w, format, a...)
		n += int64(m)
	}
	p("__addr__ : %s\n", s.Primary)
	if s.Length != "" {
		p("__lenAddr__ : %s\n", s.Length)
	}
	if s.Pointer != "" {
		p("__ptrAddr__ : %s\n", s.Pointer)
	}
	if s.Pattern != "" {
		p("__patternAddr__ : %s\n", s.Pattern)
	}
	for _, r := range s.Patterns {
		p("%s\n", r)
	}
	if len(s.Patterns) > 0 {
		p("Memory(%s, Exactly, right-sided value); <- condition for patterned chat-detect\n", s.Pattern)
	}
	for _, m := range s.Messages {
		p("%s\n", m)
	}
	p("(not belong to any pattern) : %d\n", NoMatch)
	p("Memory(%s, Exactly, right-sided value); <- condition for chat-detect\n", s.Primary)
	p("Total: %d\n", s.Total)
	return n, nil
}

// Fingerprint identifies a compiled configuration: keys, slots, the digest table in digest
// order, and the rules in evaluation order.
func (c *Config) Fingerprint() [32]byte {
	h, w := sha256.New(), make([]byte, 4)
	put := func(v uint32) {
		binary.LittleEndian.PutUint32(w, v)
		h.Write(w)
	}
	put(c.Keys.K0)
	put(c.Keys.K1)
	put(c.Addrs.Primary)
	put(c.Addrs.Length)
	put(c.Addrs.Pointer)
	put(c.Addrs.Pattern)

	digests := c.Dict.Digests()
	sort.Slice(digests, func(i, j int) bool { return digests[i] < digests[j] })
	for _, d := range digests {
		code, _ := c.Dict.Code(d)
		put(d)
		put(code)
	}
	for _, p := range c.Patterns {
		for _, b := range [][]byte{p.Prefix, p.Middle, p.Suffix} {
			put(uint32(len(b)))
			h.Write(b)
		}
		put(p.Code)
	}

	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}
