package classify

import (
	"fmt"
	"github.com/dolthub/swiss"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// Entry is one configured chat message.
type Entry struct {
	Message string
	Code    uint32
}

// Dictionary maps digests of the configured messages to their entries. Exactly one entry exists
// per digest; a second message with the same digest is a configuration error, never a merge.
type Dictionary struct {
	table *swiss.Map[uint32, Entry]
	order []uint32

	/* Lines outside [MinLen, MaxLen] cannot be in the table and are not hashed. */
	MinLen, MaxLen int
}

func newDictionary() *Dictionary {
	return &Dictionary{table: swiss.NewMap[uint32, Entry](16), MinLen: MaxMessage, MaxLen: 0}
}

func (d *Dictionary) add(digest uint32, e Entry) error {
	if prev, ok := d.table.Get(digest); ok {
		return fmt.Errorf("%w: %q and %q both hash to %08x", ErrDuplicateDigest, prev.Message, e.Message, digest)
	}
	d.table.Put(digest, e)
	d.order = append(d.order, digest)
	if n := len(e.Message); n > d.MaxLen {
		d.MaxLen = n
	}
	if n := len(e.Message); n < d.MinLen {
		d.MinLen = n
	}
	return nil
}

func (d *Dictionary) Len() int { return d.table.Count() }

func (d *Dictionary) InBounds(n int) bool { return n >= d.MinLen && n <= d.MaxLen }

func (d *Dictionary) Lookup(digest uint32) (Entry, bool) { return d.table.Get(digest) }

func (d *Dictionary) Code(digest uint32) (uint32, bool) {
	e, ok := d.table.Get(digest)
	return e.Code, ok
}

// Entries returns the entries in configuration order.
func (d *Dictionary) Entries() []Entry {
	out := make([]Entry, 0, len(d.order))
	for _, h := range d.order {
		e, _ := d.table.Get(h)
		out = append(out, e)
	}
	return out
}

// Digests returns every digest in the table, in configuration order.
func (d *Dictionary) Digests() []uint32 { return append([]uint32(nil), d.order...) }
