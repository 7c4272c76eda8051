package main

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"github.com/p7r0x7/chathash"
	"math/bits"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

const ints = uint32(5e4)

/* meanBias is the mean distance of each output bit's frequency from one half, in percent. */
func meanBias(digests []uint32) float64 {
	var tally [32]int64
	for _, d := range digests {
		for ; d != 0; d &= d - 1 {
			tally[bits.TrailingZeros32(d)]++
		}
	}
	half := int64(len(digests) / 2)
	var total int64
	for _, t := range tally {
		if t -= half; t < 0 {
			t = -t
		}
		total += t
	}
	return float64(total) / 32 / float64(half) * 100
}

/* avalanche is the mean fraction of output bits flipped by flipping one input bit, in percent. */
func avalanche(msgs [][]byte) float64 {
	var flipped, trials int
	for _, m := range msgs {
		base := chathash.Sum32(m, keys)
		for i := 0; i < len(m)*8; i++ {
			m[i/8] ^= 1 << (i % 8)
			flipped += bits.OnesCount32(base ^ chathash.Sum32(m, keys))
			m[i/8] ^= 1 << (i % 8)
			trials++
		}
	}
	return float64(flipped) / float64(trials*32) * 100
}

func bias() {
	integers, random := make([]uint32, 0, ints), make([]uint32, 0, ints)
	msgs, buf := make([][]byte, 0, ints/100), make([]byte, 4)
	for i := ints; i > 0; i-- {
		binary.BigEndian.PutUint32(buf, i)
		integers = append(integers, chathash.Sum32(buf, keys))

		line := make([]byte, 1+i%78)
		if _, err := rand.Read(line); err != nil {
			panic(err)
		}
		random = append(random, chathash.Sum32(line, keys))
		if i%100 == 0 {
			msgs = append(msgs, line)
		}
	}
	fmt.Printf("Integer input Monobit test:  %5.3f%%\n", meanBias(integers))
	fmt.Printf("Random input Monobit test:   %5.3f%%\n", meanBias(random))
	fmt.Printf("Single-bit avalanche:        %5.3f%%\n", avalanche(msgs))
}
