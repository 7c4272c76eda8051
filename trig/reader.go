package trig

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.
// The byte cursor of the constrained backend. The machine can only load whole aligned words,
// so the cursor is kept as an aligned address plus a byte index within that word, and a byte is
// extracted by peeling the loaded word bit by bit and keeping the eight bits the index selects.

type reader struct {
	s scratch

	ptr, length, off   Var /* inputs */
	prev, primed       Var /* last base seeked to */
	cur, subp          Var /* cursor: aligned address, byte within the word */
	word, bit, val     Var
	out, left, next    Var
	seek, done, d1, d2 Var
	seeks              Var

	check, seekTo, begin, atEnd, tag, readByte Routine
	place                                      [4]Routine
}

func newReader(m *Machine, s scratch) *reader {
	r := &reader{s: s}
	for _, v := range []*Var{
		&r.ptr, &r.length, &r.off, &r.prev, &r.primed, &r.cur, &r.subp, &r.word, &r.bit,
		&r.val, &r.out, &r.left, &r.next, &r.seek, &r.done, &r.d1, &r.d2, &r.seeks,
	} {
		*v = m.Var()
	}

	/* A seek is needed for a new base or when the cursor is not where the caller resumes. */
	r.check = Routine{
		{Actions: []Action{
			r.seek.SetNumber(0),
			r.d1.SetTo(r.ptr), r.d1.Subtract(r.prev),
			r.d2.SetTo(r.ptr), r.d2.Add(r.off), r.d2.Subtract(r.cur), r.d2.Subtract(r.subp)}},
		{Conds: []Cond{r.d1.AtLeast(1)}, Actions: []Action{r.seek.SetNumber(1)}},
		{Conds: []Cond{r.d2.AtLeast(1)}, Actions: []Action{r.seek.SetNumber(1)}},
		{Conds: []Cond{r.primed.Exactly(0)}, Actions: []Action{r.seek.SetNumber(1)}},
	}

	/* Split ptr+off into its aligned word address and the two low bits. */
	r.seekTo = Routine{{Actions: []Action{
		s.tmp.SetTo(r.ptr), s.tmp.Add(r.off), r.cur.SetNumber(0)}}}
	for i := 31; i >= 2; i-- {
		r.seekTo = append(r.seekTo, Trigger{
			Conds:   []Cond{s.tmp.AtLeast(1 << i)},
			Actions: []Action{s.tmp.SubtractNumber(1 << i), r.cur.AddNumber(1 << i)},
		})
	}
	r.seekTo = append(r.seekTo, Trigger{Actions: []Action{
		r.subp.SetTo(s.tmp), r.prev.SetTo(r.ptr), r.primed.SetNumber(1), r.seeks.AddNumber(1)}})

	r.begin = do(r.out.SetNumber(0), r.left.SetTo(r.length), r.left.Subtract(r.off),
		r.next.SetTo(r.off), r.next.AddNumber(4))

	r.atEnd = Routine{
		{Actions: []Action{r.done.SetNumber(0)}},
		{Conds: []Cond{r.left.Exactly(0)}, Actions: []Action{r.done.SetNumber(1)}},
	}

	/* Length mod 256 into the top byte; the next offset is one past the end. */
	r.tag = cat(
		s.shiftInto(r.out, r.length, 31, 8, 24),
		do(r.next.SetTo(r.length), r.next.AddNumber(1)),
	)

	r.readByte = Routine{{Actions: []Action{
		r.word.Load(r.cur), s.tmp.SetTo(r.word), r.val.SetNumber(0), r.bit.SetNumber(0)}}}
	for i := 31; i >= 0; i-- {
		r.readByte = append(r.readByte,
			Trigger{
				Conds:   []Cond{s.tmp.AtLeast(1 << i)},
				Actions: []Action{s.tmp.SubtractNumber(1 << i), r.bit.SetNumber(1)}},
			Trigger{
				Conds:   []Cond{r.bit.Exactly(1), r.subp.Exactly(uint32(i / 8))},
				Actions: []Action{r.val.AddNumber(1 << (i % 8))}},
			Trigger{
				Actions: []Action{r.bit.SetNumber(0)}},
		)
	}
	r.readByte = append(r.readByte,
		Trigger{Actions: []Action{r.subp.AddNumber(1)}},
		Trigger{
			Conds:   []Cond{r.subp.Exactly(4)},
			Actions: []Action{r.subp.SetNumber(0), r.cur.AddNumber(4)}},
	)

	for k := range r.place {
		r.place[k] = cat(s.shiftInto(r.out, r.val, 7, 8, uint(8*k)), do(r.left.SubtractNumber(1)))
	}
	return r
}

// wordAt runs the cursor over one word, branching on the flags the routines leave behind.
func (r *reader) wordAt(m *Machine, base, length, off uint32) (uint32, uint32) {
	m.Set(r.ptr, base)
	m.Set(r.length, length)
	m.Set(r.off, off)

	m.Run(r.check)
	if m.Get(r.seek) == 1 {
		m.Run(r.seekTo)
	}
	m.Run(r.begin)
	for k := range r.place {
		m.Run(r.atEnd)
		if m.Get(r.done) == 1 {
			m.Run(r.tag)
			break
		}
		m.Run(r.readByte)
		m.Run(r.place[k])
	}
	return m.Get(r.out), m.Get(r.next)
}
