package classify

import (
	"github.com/p7r0x7/chathash"
	"github.com/sclevine/spec"
	"github.com/sclevine/spec/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

const (
	primary, lenSlot, ptrSlot, patSlot = 0x58d900, 0x58d904, 0x58d908, 0x58d90c
	line                               = 0x640b63
)

func TestPattern(t *testing.T) {
	spec.Run(t, "Pattern", func(t *testing.T, when spec.G, it spec.S) {
		p := Pattern{Prefix: []byte("hi"), Middle: []byte("mid"), Suffix: []byte("bye"), Code: 7}

		it("matches prefix, middle and suffix", func() {
			assert.True(t, p.Match([]byte("hi xx mid yy bye")))
		})

		it("requires the middle", func() {
			assert.False(t, p.Match([]byte("hi xx yy bye")))
		})

		it("rejects lines shorter than prefix plus suffix", func() {
			assert.False(t, p.Match([]byte("bye")))
			assert.False(t, p.Match([]byte("hibye")[:4]))
		})

		it("does not let the middle overlap the prefix or suffix", func() {
			q := Pattern{Prefix: []byte("ab"), Middle: []byte("bc"), Suffix: []byte("cd")}
			assert.False(t, q.Match([]byte("abcd")))
			assert.True(t, q.Match([]byte("abbccd")))
		})

		it("treats an empty rule as matching everything", func() {
			assert.True(t, Pattern{}.Match(nil))
		})

		when("several rules match", func() {
			it("returns the first in configuration order", func() {
				ps := Patterns{
					{Prefix: []byte("a"), Suffix: []byte("z"), Code: 1},
					{Prefix: []byte("ab"), Suffix: []byte("z"), Code: 2},
				}
				code, ok := ps.Classify([]byte("abcz"))
				assert.True(t, ok)
				assert.Equal(t, uint32(1), code)

				_, ok = ps.Classify([]byte("zzz"))
				assert.False(t, ok)
			})
		})
	}, spec.Report(report.Terminal{}))
}

func TestEngine(t *testing.T) {
	for _, kind := range []Kind{Reference, Constrained} {
		kind := kind
		spec.Run(t, "Engine/"+string(kind), func(t *testing.T, when spec.G, it spec.S) {
			var (
				mem *chathash.Space
				e   *Engine
			)

			it.Before(func() {
				cfg, err := Compile(settings(
					"__ADDR__", "0x58D900",
					"__LENADDR__", "0x58D904",
					"__PTRADDR__", "0x58D908",
					"__PATTERNADDR__", "0x58D90C",
					"go", "5",
					"stop", "9",
					"^a.*b.*c$", "42",
				), testKeys, nil)
				require.NoError(t, err)
				mem = chathash.NewSpace()
				e, _, err = NewEngine(cfg, mem, kind)
				require.NoError(t, err)
			})

			event := func(msg string) Result {
				chathash.WriteBytes(mem, line, []byte(msg))
				return e.OnEvent(line, uint32(len(msg)))
			}

			it("writes the dictionary code", func() {
				r := event("go")
				assert.Equal(t, uint32(5), r.Code)
				assert.Equal(t, uint32(5), mem.Load(primary))
				assert.True(t, r.Hashed)
				assert.Equal(t, chathash.Sum32([]byte("go"), testKeys), r.Digest)

				assert.Equal(t, uint32(9), event("stop").Code)
			})

			it("writes the pattern code when only a rule matches", func() {
				mem.Store(patSlot, 0)
				r := event("abXbYc")
				assert.Equal(t, NoMatch, r.Code)
				assert.False(t, r.Hashed, "six bytes is longer than any message")
				assert.Equal(t, NoMatch, mem.Load(primary))
				assert.Equal(t, uint32(42), r.Pattern)
				assert.Equal(t, uint32(42), mem.Load(patSlot))
			})

			it("leaves the pattern slot alone without a match", func() {
				mem.Store(patSlot, 0x77)
				r := event("unknown")
				assert.Equal(t, NoMatch, r.Code)
				assert.Zero(t, r.Pattern)
				assert.Equal(t, uint32(0x77), mem.Load(patSlot))
			})

			it("hashes lines within the dictionary bounds even without a match", func() {
				r := event("abc")
				assert.True(t, r.Hashed)
				assert.Equal(t, NoMatch, r.Code)
				assert.Equal(t, uint32(42), r.Pattern)
			})

			it("records length and pointer for every line", func() {
				msg := "a much longer line than anything in the dictionary"
				event(msg)
				assert.Equal(t, uint32(len(msg)), mem.Load(lenSlot))
				assert.Equal(t, uint32(line), mem.Load(ptrSlot))
			})

			it("resets its slots between ticks", func() {
				mem.Store(patSlot, 0x77)
				event("go")
				e.Reset()
				assert.Equal(t, Awaiting, mem.Load(primary))
				assert.Zero(t, mem.Load(lenSlot))
				assert.Zero(t, mem.Load(ptrSlot))
				assert.Zero(t, mem.Load(patSlot))
			})

			it("does not read past the line", func() {
				chathash.WriteBytes(mem, line, []byte("gone"))
				assert.Equal(t, uint32(5), e.OnEvent(line, 2).Code)
			})
		}, spec.Report(report.Terminal{}))
	}
}

func TestNewEngine_Unknown(t *testing.T) {
	cfg, err := Compile(nil, testKeys, nil)
	require.NoError(t, err)
	_, _, err = NewEngine(cfg, chathash.NewSpace(), "quantum")
	assert.ErrorIs(t, err, ErrBackend)
}

func TestEngine_ConstrainedCost(t *testing.T) {
	cfg, err := Compile(settings("go", "5", "a line of exactly thirty bytes", "6"), testKeys, nil)
	require.NoError(t, err)
	mem := chathash.NewSpace()
	e, m, err := NewEngine(cfg, mem, Constrained)
	require.NoError(t, err)

	chathash.WriteBytes(mem, line, []byte("xx"))
	e.OnEvent(line, 2)
	short := m.Tick()
	chathash.WriteBytes(mem, line, []byte("this line is too long to hash at all"))
	e.OnEvent(line, 36)
	assert.Zero(t, m.Tick(), "lines outside the bounds cost no triggers")
	assert.NotZero(t, short)
}
