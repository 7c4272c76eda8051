package classify

import (
	"bytes"
	"fmt"
	"strings"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// Pattern matches lines that start with Prefix, end with Suffix, and contain Middle somewhere
// between the two.
type Pattern struct {
	Prefix, Middle, Suffix []byte
	Code                   uint32
}

const wildcard = ".*"

/* parsePattern reports ok for keys shaped like a rule; err is set when such a key is invalid. */
func parsePattern(key string) (p Pattern, ok bool, err error) {
	if !strings.HasPrefix(key, "^") || !strings.HasSuffix(key, "$") || len(key) < 2 ||
		strings.Count(key, wildcard) != 2 {
		return p, false, nil
	}
	parts := strings.SplitN(key[1:len(key)-1], wildcard, 3)
	p = Pattern{Prefix: []byte(parts[0]), Middle: []byte(parts[1]), Suffix: []byte(parts[2])}
	if n := len(p.Prefix) + len(p.Middle) + len(p.Suffix) + 2; n > MaxPattern {
		return p, true, fmt.Errorf("%w: chat pattern %q needs %d bytes, up to %d allowed",
			ErrTooLong, key, n, MaxPattern)
	}
	return p, true, nil
}

func (p Pattern) PrefixLen() int { return len(p.Prefix) }

func (p Pattern) SuffixLen() int { return len(p.Suffix) }

func (p Pattern) Match(buf []byte) bool {
	end := len(buf) - len(p.Suffix)
	if end < len(p.Prefix) {
		return false
	}
	return bytes.HasPrefix(buf, p.Prefix) && bytes.HasSuffix(buf, p.Suffix) &&
		bytes.Contains(buf[len(p.Prefix):end], p.Middle)
}

func (p Pattern) String() string {
	return "^" + string(p.Prefix) + wildcard + string(p.Middle) + wildcard + string(p.Suffix) + "$"
}

// Patterns are evaluated in configuration order; the first match wins.
type Patterns []Pattern

func (ps Patterns) Classify(buf []byte) (uint32, bool) {
	for i := range ps {
		if ps[i].Match(buf) {
			return ps[i].Code, true
		}
	}
	return 0, false
}
