// Package classify turns a finished chat-detection configuration into the tables that map a
// chat line to a small integer code, and runs them against lines held in a chathash.Memory.
//
// A configuration is an ordered list of key/value pairs. Four keys name output addresses:
//
//	__ADDR__         primary result (default 0x58D900)
//	__LENADDR__      length of the line last examined
//	__PTRADDR__      address of the line last examined
//	__PATTERNADDR__  code of the first matching pattern
//
// A key of the form ^prefix.*middle.*suffix$ is a pattern rule; any other key is an exact chat
// message. Values are integers in any base Go's strconv accepts with base 0.
package classify

import (
	"errors"
	"fmt"
	"github.com/p7r0x7/chathash"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

const (
	MaxMessage = 78 /* bytes a player can type into one chat line */
	MaxPattern = 82 /* literal bytes of a rule, plus two */

	DefaultAddr uint32 = 0x58d900

	Awaiting uint32 = 0 /* primary slot before a line is classified */
	NoMatch  uint32 = 1 /* primary slot when no message matched */
)

var (
	ErrValue            = errors.New("right-sided value is not a valid number")
	ErrCode             = errors.New("code out of range")
	ErrTooLong          = errors.New("too long to type")
	ErrDuplicateDigest  = errors.New("duplicated chat hash")
	ErrDuplicatePattern = errors.New("duplicated pattern")
	ErrDuplicateRole    = errors.New("address given more than once")
	ErrDuplicateAddress = errors.New("duplicated address")
	ErrNoPatternAddress = errors.New("__PATTERNADDR__ not defined for pattern rules")
)

// Setting is one already-tokenized configuration pair.
type Setting struct {
	Key, Value string
}

// Addresses are the output slots. Zero means the slot is not configured.
type Addresses struct {
	Primary, Length, Pointer, Pattern uint32
}

// Config is a compiled configuration. It is immutable once Compile returns.
type Config struct {
	Keys     chathash.Keys
	Addrs    Addresses
	Dict     *Dictionary
	Patterns Patterns
}

var roles = map[string]func(a *Addresses) *uint32{
	"__ADDR__":        func(a *Addresses) *uint32 { return &a.Primary },
	"__LENADDR__":     func(a *Addresses) *uint32 { return &a.Length },
	"__PTRADDR__":     func(a *Addresses) *uint32 { return &a.Pointer },
	"__PATTERNADDR__": func(a *Addresses) *uint32 { return &a.Pattern },
}

// Compile validates settings and builds the tables for keys. Any invalid, colliding or
// ambiguous entry fails the whole configuration; there is no partial result.
func Compile(settings []Setting, keys chathash.Keys, log *slog.Logger) (*Config, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &Config{Keys: keys, Dict: newDictionary()}
	seen, triples := map[string]bool{}, map[[3]string]string{}

	for _, s := range settings {
		k, upper := s.Key, strings.ToUpper(s.Key)
		if upper == "__ENCODING__" {
			continue
		}
		v, err := strconv.ParseInt(strings.TrimSpace(s.Value), 0, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s : %s", ErrValue, k, s.Value)
		}

		if role, ok := roles[upper]; ok {
			if seen[upper] {
				return nil, fmt.Errorf("%w: %s : %s", ErrDuplicateRole, k, s.Value)
			}
			seen[upper] = true
			if v < 4 || v > 0xffffffff {
				return nil, fmt.Errorf("%w: %s : %s is not a usable address", ErrValue, k, s.Value)
			}
			*role(&c.Addrs) = uint32(v) &^ 3
			continue
		}

		if p, ok, err := parsePattern(k); ok {
			if err != nil {
				return nil, err
			}
			if v <= 0 || v > 0xffffffff {
				return nil, fmt.Errorf("%w: %s : %d, want greater than 0", ErrCode, k, v)
			}
			key := [3]string{string(p.Prefix), string(p.Middle), string(p.Suffix)}
			if prev, dup := triples[key]; dup {
				return nil, fmt.Errorf("%w: %s and %s", ErrDuplicatePattern, prev, k)
			}
			triples[key], p.Code = k, uint32(v)
			c.Patterns = append(c.Patterns, p)
			continue
		}

		if v <= 1 || v > 0xffffffff {
			return nil, fmt.Errorf("%w: %s : %d, want greater than 1", ErrCode, k, v)
		}
		if len(k) > MaxMessage {
			return nil, fmt.Errorf("%w: chat message %q is %d bytes, up to %d allowed",
				ErrTooLong, k, len(k), MaxMessage)
		}
		if err := c.Dict.add(chathash.Sum32([]byte(k), keys), Entry{k, uint32(v)}); err != nil {
			return nil, err
		}
	}

	if c.Addrs.Primary == 0 {
		c.Addrs.Primary = DefaultAddr
	}
	if err := c.Addrs.distinct(); err != nil {
		return nil, err
	}
	if len(c.Patterns) > 0 && c.Addrs.Pattern == 0 {
		return nil, ErrNoPatternAddress
	}

	c.log(log)
	return c, nil
}

func (a Addresses) distinct() error {
	set := []uint32{a.Primary, a.Length, a.Pointer, a.Pattern}
	for i := range set {
		for j := i + 1; j < len(set); j++ {
			if set[i] != 0 && set[i] == set[j] {
				return fmt.Errorf("%w: 0x%X, 0x%X, 0x%X, 0x%X",
					ErrDuplicateAddress, a.Primary, a.Length, a.Pointer, a.Pattern)
			}
		}
	}
	return nil
}

func (c *Config) log(log *slog.Logger) {
	log.Info("output", "role", "__addr__", "address", fmt.Sprintf("0x%X", c.Addrs.Primary))
	for _, r := range []struct {
		name string
		addr uint32
	}{{"__lenAddr__", c.Addrs.Length}, {"__ptrAddr__", c.Addrs.Pointer}, {"__patternAddr__", c.Addrs.Pattern}} {
		if r.addr != 0 {
			log.Info("output", "role", r.name, "address", fmt.Sprintf("0x%X", r.addr))
		}
	}
	for _, p := range c.Patterns {
		log.Info("pattern", "rule", p.String(), "code", p.Code)
	}
	for _, e := range c.Dict.Entries() {
		log.Debug("message", "text", e.Message, "code", e.Code)
	}
	log.Info("compiled", "messages", c.Dict.Len(), "patterns", len(c.Patterns),
		"minlen", c.Dict.MinLen, "maxlen", c.Dict.MaxLen)
}

// ClassifyExact looks buf up in the dictionary with the reference digest.
func (c *Config) ClassifyExact(buf []byte) (uint32, bool) {
	if !c.Dict.InBounds(len(buf)) {
		return 0, false
	}
	return c.Dict.Code(chathash.Sum32(buf, c.Keys))
}

// ClassifyPattern returns the code of the first rule buf satisfies.
func (c *Config) ClassifyPattern(buf []byte) (uint32, bool) { return c.Patterns.Classify(buf) }
