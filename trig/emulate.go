package trig

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.
// Bit-serial replacements for the operations a trigger machine lacks. Every one of them peels a
// scratch copy of its operand from the top bit down: once the bits above i are gone, the copy
// is at least 1<<i exactly when bit i is set, so a threshold test and a subtraction recover the
// bit without a mask or a shift.

// scratch holds the registers the emulated operations clobber.
type scratch struct {
	tmp, tmp2, flag, acc Var
}

func newScratch(m *Machine) scratch {
	return scratch{m.Var(), m.Var(), m.Var(), m.Var()}
}

// rotl rotates v left by b bits in place: 32 conditional additions into an accumulator, one per
// source bit, each adding the bit's rotated weight.
func (s scratch) rotl(v Var, b uint) Routine {
	if b == 0 || b > 31 {
		panic("trig: rotate distance out of range")
	}
	r := make(Routine, 0, 34)
	r = append(r, Trigger{Actions: []Action{s.tmp.SetTo(v), s.acc.SetNumber(0)}})
	for i := 31; i >= 0; i-- {
		r = append(r, Trigger{
			Conds:   []Cond{s.tmp.AtLeast(1 << i)},
			Actions: []Action{s.tmp.SubtractNumber(1 << i), s.acc.AddNumber(1 << ((uint(i) + b) & 31))},
		})
	}
	return append(r, Trigger{Actions: []Action{v.SetTo(s.acc)}})
}

// xor sets dst to dst^src. A bit is set in the result when exactly one operand had it.
func (s scratch) xor(dst, src Var) Routine {
	r := make(Routine, 0, 2+32*4)
	r = append(r, Trigger{Actions: []Action{
		s.tmp.SetTo(dst), s.tmp2.SetTo(src), s.acc.SetNumber(0), s.flag.SetNumber(0)}})
	for i := 31; i >= 0; i-- {
		r = append(r,
			Trigger{
				Conds:   []Cond{s.tmp.AtLeast(1 << i)},
				Actions: []Action{s.tmp.SubtractNumber(1 << i), s.flag.AddNumber(1)}},
			Trigger{
				Conds:   []Cond{s.tmp2.AtLeast(1 << i)},
				Actions: []Action{s.tmp2.SubtractNumber(1 << i), s.flag.AddNumber(1)}},
			Trigger{
				Conds:   []Cond{s.flag.Exactly(1)},
				Actions: []Action{s.acc.AddNumber(1 << i)}},
			Trigger{
				Actions: []Action{s.flag.SetNumber(0)}},
		)
	}
	return append(r, Trigger{Actions: []Action{dst.SetTo(s.acc)}})
}

// shiftInto adds src<<shift to dst, counting only the low width bits of src. src must be below
// 1<<(top+1); it is left untouched.
func (s scratch) shiftInto(dst, src Var, top, width, shift uint) Routine {
	r := make(Routine, 0, top+2)
	r = append(r, Trigger{Actions: []Action{s.tmp.SetTo(src)}})
	for i := int(top); i >= 0; i-- {
		t := Trigger{
			Conds:   []Cond{s.tmp.AtLeast(1 << i)},
			Actions: []Action{s.tmp.SubtractNumber(1 << i)},
		}
		if uint(i) < width && uint(i)+shift < 32 {
			t.Actions = append(t.Actions, dst.AddNumber(1<<(uint(i)+shift)))
		}
		r = append(r, t)
	}
	return r
}

func cat(rs ...Routine) Routine {
	var n int
	for _, r := range rs {
		n += len(r)
	}
	out := make(Routine, 0, n)
	for _, r := range rs {
		out = append(out, r...)
	}
	return out
}

func do(a ...Action) Routine { return Routine{{Actions: a}} }
