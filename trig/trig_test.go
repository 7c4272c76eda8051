package trig

import (
	"github.com/p7r0x7/chathash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math/bits"
	"math/rand"
	"testing"
)

var testKeys = chathash.Keys{K0: 0x03020100, K1: 0x07060504}

func TestRotl_Emulated(t *testing.T) {
	t.Parallel()
	b := NewBackend(NewMachine(chathash.NewSpace()))
	rng := rand.New(rand.NewSource(1))

	for _, n := range []uint{7, 8, 16, 9, 11} {
		for i := 0; i < 256; i++ {
			a := rng.Uint32()
			want := uint32((uint64(a)<<n | uint64(a)>>(32-n)) & 0xffffffff)
			require.Equalf(t, want, b.Rotl(a, n), "rotl(%08x, %d)", a, n)
		}
	}
	for n := uint(1); n < 32; n++ {
		for _, a := range []uint32{0, 1, 0x80000000, 0xffffffff, 0xdeadbeef} {
			assert.Equalf(t, bits.RotateLeft32(a, int(n)), b.Rotl(a, n), "rotl(%08x, %d)", a, n)
		}
	}
	assert.Panics(t, func() { b.Rotl(1, 0) })
	assert.Panics(t, func() { b.Rotl(1, 32) })
}

func TestRotl_ConditionalAdds(t *testing.T) {
	s := newScratch(NewMachine(chathash.NewSpace()))
	for _, n := range chathash.Distances {
		assert.Equal(t, 32, s.rotl(0, n).Conditional(), "distance %d", n)
	}
}

func TestXor_Emulated(t *testing.T) {
	t.Parallel()
	b := NewBackend(NewMachine(chathash.NewSpace()))
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 512; i++ {
		x, y := rng.Uint32(), rng.Uint32()
		require.Equalf(t, x^y, b.Xor(x, y), "%08x ^ %08x", x, y)
	}
	assert.Equal(t, uint32(0), b.Xor(0xffffffff, 0xffffffff))
	assert.Equal(t, uint32(0xffffffff), b.Xor(0, 0xffffffff))
}

func TestRound_Equivalence(t *testing.T) {
	t.Parallel()
	b, n := NewBackend(NewMachine(chathash.NewSpace())), chathash.NewNative(nil)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 64; i++ {
		st := chathash.State{V0: rng.Uint32(), V1: rng.Uint32(), V2: rng.Uint32(), V3: rng.Uint32()}
		want, got := st, st
		n.Round(&want)
		b.Round(&got)
		require.Equal(t, want, got)
	}
}

func TestBackend_Golden(t *testing.T) {
	t.Parallel()
	var msg []byte
	for i := 0; i < 10; i++ {
		h := chathash.NewHasher(NewBackend(NewMachine(chathash.Bytes(msg))))
		assert.Equalf(t, chathash.Sum32(msg, testKeys), h.Hash(0, uint32(len(msg)), testKeys),
			"% x", msg)
		msg = append(msg, byte(i))
	}
}

func TestBackend_Equivalence(t *testing.T) {
	t.Parallel()
	const base = 0x640b63
	rng := rand.New(rand.NewSource(4))
	msg := make([]byte, 78)
	rng.Read(msg)

	space := chathash.NewSpace()
	chathash.WriteBytes(space, base, msg)
	space.Store(base+84, 0xffffffff) /* bytes past the buffer must not be read */

	ref := chathash.NewHasher(chathash.NewNative(space))
	con := chathash.NewHasher(NewBackend(NewMachine(space)))
	for n := uint32(0); n <= 78; n++ {
		keys := chathash.Keys{K0: rng.Uint32(), K1: rng.Uint32()}
		require.Equalf(t, ref.Hash(base, n, keys), con.Hash(base, n, keys), "length %d", n)
	}
}

func TestBackend_CostIndependentOfContent(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(5))
	cost := func(msg []byte) uint64 {
		space := chathash.NewSpace()
		chathash.WriteBytes(space, 0x1001, msg)
		m := NewMachine(space)
		chathash.NewHasher(NewBackend(m)).Hash(0x1001, uint32(len(msg)), testKeys)
		return m.Ops()
	}
	for _, n := range []int{0, 3, 4, 5, 77, 78} {
		a, b := make([]byte, n), make([]byte, n)
		rng.Read(b)
		assert.Equalf(t, cost(a), cost(b), "length %d", n)
	}
	assert.Less(t, cost(make([]byte, 4)), cost(make([]byte, 78)))
}

func TestBackend_Seeks(t *testing.T) {
	space := chathash.NewSpace()
	chathash.WriteBytes(space, 0x2002, []byte("hello, triggers"))
	b := NewBackend(NewMachine(space))
	h := chathash.NewHasher(b)

	h.Hash(0x2002, 15, testKeys)
	assert.Equal(t, uint32(1), b.Seeks())
	h.Hash(0x2002, 15, testKeys)
	assert.Equal(t, uint32(2), b.Seeks(), "a new digest over the same buffer restarts the cursor")
}

func TestMachine_Budget(t *testing.T) {
	space := chathash.NewSpace()
	m := NewMachine(space)
	m.Budget = 100
	chathash.NewHasher(NewBackend(m)).Hash(0, 0, testKeys)
	require.ErrorIs(t, m.Err(), ErrBudget)
	assert.Greater(t, m.Tick(), uint64(100))
	assert.Equal(t, uint64(0), m.Tick())

	m = NewMachine(space)
	m.Budget = 1 << 20
	chathash.NewHasher(NewBackend(m)).Hash(0, 0, testKeys)
	assert.NoError(t, m.Err())
}

func TestMachine_Memory(t *testing.T) {
	space := chathash.NewSpace()
	m := NewMachine(space)
	addr, v, w := m.Var(), m.Var(), m.Var()
	m.Set(addr, 0x58d900)
	m.Set(v, 42)
	m.Run(Routine{
		{Actions: []Action{Store(addr, v)}},
		{Conds: []Cond{v.AtMost(41)}, Actions: []Action{v.SetNumber(0)}},
		{Conds: []Cond{v.Exactly(42), v.AtLeast(42)}, Actions: []Action{w.Load(addr), w.AddNumber(1)}},
	})
	assert.Equal(t, uint32(42), space.Load(0x58d900))
	assert.Equal(t, uint32(42), m.Get(v))
	assert.Equal(t, uint32(43), m.Get(w))
	assert.Equal(t, uint64(3), m.Ops())
}

func BenchmarkBackend(b *testing.B) {
	msg := make([]byte, 78)
	h := chathash.NewHasher(NewBackend(NewMachine(chathash.Bytes(msg))))
	b.SetBytes(int64(len(msg)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Hash(0, uint32(len(msg)), testKeys)
	}
}
