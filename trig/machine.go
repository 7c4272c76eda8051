// Package trig is a trigger machine: a register file and an address space manipulated only by
// triggers, each a conjunction of comparisons against constants guarding a list of additions,
// subtractions and assignments. There is no shift, rotate, multiply or bitwise operation; the
// only indirection is loading or storing the word a register points at. The digest's
// constrained backend is built on it.
package trig

import (
	"errors"
	"fmt"
	"github.com/p7r0x7/chathash"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// ErrBudget is recorded when more triggers run in one tick than Machine.Budget allows.
var ErrBudget = errors.New("trig: trigger budget exceeded")

// Var names one 32-bit register of a Machine.
type Var int

type cmp uint8

const (
	atLeast cmp = iota
	atMost
	exactly
)

// Cond is a comparison of a register against a constant.
type Cond struct {
	v   Var
	cmp cmp
	n   uint32
}

func (v Var) AtLeast(n uint32) Cond { return Cond{v, atLeast, n} }

func (v Var) AtMost(n uint32) Cond { return Cond{v, atMost, n} }

func (v Var) Exactly(n uint32) Cond { return Cond{v, exactly, n} }

type op uint8

const (
	setNumber op = iota
	addNumber
	subNumber
	setVar
	addVar
	subVar
	load
	store
)

// Action modifies one register or one word of memory. All arithmetic wraps modulo 2^32.
type Action struct {
	op       op
	dst, src Var
	n        uint32
}

func (v Var) SetNumber(n uint32) Action { return Action{op: setNumber, dst: v, n: n} }

func (v Var) AddNumber(n uint32) Action { return Action{op: addNumber, dst: v, n: n} }

func (v Var) SubtractNumber(n uint32) Action { return Action{op: subNumber, dst: v, n: n} }

func (v Var) SetTo(src Var) Action { return Action{op: setVar, dst: v, src: src} }

func (v Var) Add(src Var) Action { return Action{op: addVar, dst: v, src: src} }

func (v Var) Subtract(src Var) Action { return Action{op: subVar, dst: v, src: src} }

// Load sets v to the word at the address held in addr.
func (v Var) Load(addr Var) Action { return Action{op: load, dst: v, src: addr} }

// Store writes src to the word at the address held in addr.
func Store(addr, src Var) Action { return Action{op: store, dst: addr, src: src} }

// Trigger runs its actions, in order, when every condition holds.
type Trigger struct {
	Conds   []Cond
	Actions []Action
}

// Routine is a straight-line list of triggers.
type Routine []Trigger

// Conditional counts the triggers of r that have at least one condition.
func (r Routine) Conditional() (n int) {
	for _, t := range r {
		if len(t.Conds) > 0 {
			n++
		}
	}
	return n
}

// Machine owns the registers and runs routines against a Memory.
type Machine struct {
	regs []uint32
	mem  chathash.Memory

	// Budget caps the triggers run between calls to Tick; zero means unlimited.
	Budget uint64

	ops, tick uint64
	err       error
}

func NewMachine(mem chathash.Memory) *Machine { return &Machine{mem: mem} }

// Var allocates a register initialised to zero.
func (m *Machine) Var() Var {
	m.regs = append(m.regs, 0)
	return Var(len(m.regs) - 1)
}

func (m *Machine) Get(v Var) uint32 { return m.regs[v] }

func (m *Machine) Set(v Var, n uint32) { m.regs[v] = n }

func (m *Machine) Memory() chathash.Memory { return m.mem }

// Ops returns how many triggers have been evaluated over the machine's lifetime.
func (m *Machine) Ops() uint64 { return m.ops }

// Tick starts a new budget window and returns the triggers evaluated in the last one.
func (m *Machine) Tick() uint64 {
	t := m.tick
	m.tick = 0
	return t
}

// Err returns the first budget violation, if any.
func (m *Machine) Err() error { return m.err }

func (m *Machine) Run(r Routine) {
	regs := m.regs
next:
	for i := range r {
		t := &r[i]
		m.ops++
		if m.tick++; m.Budget > 0 && m.tick > m.Budget && m.err == nil {
			m.err = fmt.Errorf("%w: more than %d triggers in one tick", ErrBudget, m.Budget)
		}
		for _, c := range t.Conds {
			v := regs[c.v]
			switch c.cmp {
			case atLeast:
				if v < c.n {
					continue next
				}
			case atMost:
				if v > c.n {
					continue next
				}
			default:
				if v != c.n {
					continue next
				}
			}
		}
		for _, a := range t.Actions {
			switch a.op {
			case setNumber:
				regs[a.dst] = a.n
			case addNumber:
				regs[a.dst] += a.n
			case subNumber:
				regs[a.dst] -= a.n
			case setVar:
				regs[a.dst] = regs[a.src]
			case addVar:
				regs[a.dst] += regs[a.src]
			case subVar:
				regs[a.dst] -= regs[a.src]
			case load:
				regs[a.dst] = m.mem.Load(regs[a.src])
			case store:
				m.mem.Store(regs[a.dst], regs[a.src])
			}
		}
	}
}
