package classify

import (
	"errors"
	"fmt"
	"github.com/p7r0x7/chathash"
	"github.com/p7r0x7/chathash/trig"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// Kind selects the digest backend of an Engine.
type Kind string

const (
	Reference   Kind = "reference"   /* native shifts and rotates */
	Constrained Kind = "constrained" /* trigger machine, add and compare only */
)

var ErrBackend = errors.New("unknown backend")

// Engine classifies lines held in a Memory and writes results to the configured slots of that
// same Memory. It is not safe for concurrent use: one event runs to completion before the next.
type Engine struct {
	cfg *Config
	mem chathash.Memory
	h   *chathash.Hasher
}

// Result mirrors what OnEvent wrote.
type Result struct {
	Code    uint32 `json:"code"`
	Pattern uint32 `json:"pattern,omitempty"` /* zero when no rule matched */
	Hashed  bool   `json:"hashed"`
	Digest  uint32 `json:"digest,omitempty"`
}

// New builds an Engine around an already-constructed backend, which must read from mem.
func New(cfg *Config, mem chathash.Memory, b chathash.Backend) *Engine {
	return &Engine{cfg: cfg, mem: mem, h: chathash.NewHasher(b)}
}

// NewEngine builds the backend named by kind over mem. For the constrained backend the machine
// running it is returned as well so callers can read its cost counters.
func NewEngine(cfg *Config, mem chathash.Memory, kind Kind) (*Engine, *trig.Machine, error) {
	switch kind {
	case Reference, "":
		return New(cfg, mem, chathash.NewNative(mem)), nil, nil
	case Constrained:
		m := trig.NewMachine(mem)
		return New(cfg, mem, trig.NewBackend(m)), m, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrBackend, kind)
	}
}

func (e *Engine) Config() *Config { return e.cfg }

// Reset puts every slot the engine owns back to its idle value: Awaiting in the primary slot,
// zero in the others. The pattern slot is only touched when rules exist.
func (e *Engine) Reset() {
	a := e.cfg.Addrs
	e.mem.Store(a.Primary, Awaiting)
	if a.Length != 0 {
		e.mem.Store(a.Length, 0)
	}
	if a.Pointer != 0 {
		e.mem.Store(a.Pointer, 0)
	}
	if a.Pattern != 0 && len(e.cfg.Patterns) > 0 {
		e.mem.Store(a.Pattern, 0)
	}
}

// OnEvent classifies the length-byte line at ptr. The primary slot always receives a code,
// NoMatch when the dictionary has no entry; the pattern slot is written only on a match.
func (e *Engine) OnEvent(ptr, length uint32) (r Result) {
	a, d := e.cfg.Addrs, e.cfg.Dict
	if a.Length != 0 {
		e.mem.Store(a.Length, length)
	}
	if a.Pointer != 0 {
		e.mem.Store(a.Pointer, ptr)
	}

	r.Code = NoMatch
	if d.InBounds(int(length)) {
		r.Hashed, r.Digest = true, e.h.Hash(ptr, length, e.cfg.Keys)
		if code, ok := d.Code(r.Digest); ok {
			r.Code = code
		}
	}
	e.mem.Store(a.Primary, r.Code)

	if len(e.cfg.Patterns) > 0 {
		if code, ok := e.cfg.Patterns.Classify(chathash.ReadBytes(e.mem, ptr, length)); ok {
			r.Pattern = code
			e.mem.Store(a.Pattern, code)
		}
	}
	return r
}
