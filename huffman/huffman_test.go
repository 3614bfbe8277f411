// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package huffman

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unixdj/imcompress"
)

func randomBytes(seed int64, n, alphabet int) []byte {
	rng := rand.New(rand.NewSource(seed))
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(rng.Intn(alphabet))
	}
	return b
}

func skewed(n int) []byte {
	rng := rand.New(rand.NewSource(7))
	b := make([]byte, n)
	for i := range b {
		// Geometric-ish: small values dominate.
		v := 0
		for v < 40 && rng.Intn(3) != 0 {
			v++
		}
		b[i] = byte(v)
	}
	return b
}

func allBytes() []byte {
	b := make([]byte, 0, 256*3)
	for i := 0; i < 256; i++ {
		for j := 0; j <= i%3; j++ {
			b = append(b, byte(i))
		}
	}
	return b
}

func TestRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name string
		data []byte
	}{
		{"two symbols", []byte{1, 2}},
		{"two symbols skewed", append(bytes.Repeat([]byte{0}, 1000), 0xff)},
		{"text", []byte("the quick brown fox jumps over the lazy dog")},
		{"random", randomBytes(1, 10000, 256)},
		{"small alphabet", randomBytes(2, 4097, 5)},
		{"skewed", skewed(20000)},
		{"all byte values", allBytes()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			payload, p, err := Encode(tc.data)
			require.NoError(t, err)
			require.Equal(t, uint64(len(tc.data)), p.Count)
			require.LessOrEqual(t, p.MaxLen, MaxCodeLen)

			out, pad, err := Decode(payload, p)
			require.NoError(t, err)
			require.Equal(t, tc.data, out)
			require.LessOrEqual(t, pad, p.MaxLen)
		})
	}
}

func TestPrefixFree(t *testing.T) {
	_, p, err := Encode(skewed(5000))
	require.NoError(t, err)
	for i, a := range p.LUT {
		for j, b := range p.LUT {
			if i == j {
				continue
			}
			short := min(a.Len, b.Len)
			shift := p.MaxLen - int(short)
			require.NotEqual(t, a.Code>>shift, b.Code>>shift,
				"%d is a prefix of %d", a.Sym, b.Sym)
		}
	}
}

func TestEmptyInput(t *testing.T) {
	for _, data := range [][]byte{nil, {}, {42}, bytes.Repeat([]byte{7}, 100)} {
		_, _, err := Encode(data)
		require.ErrorIs(t, err, imcompress.ErrEmptyInput)
	}
}

func TestCodeTooLong(t *testing.T) {
	// Powers of two merge into a chain: n symbols give depth n-1.
	var f [256]uint64
	for i := 0; i < 32; i++ {
		f[i] = 1 << i
	}
	c, maxlen, err := buildCodes(&f)
	require.NoError(t, err)
	require.Equal(t, 31, maxlen)
	require.Equal(t, byte(1), c[31].nbit)
	require.Equal(t, byte(31), c[0].nbit)

	f[32] = 1 << 32
	_, _, err = buildCodes(&f)
	require.ErrorIs(t, err, imcompress.ErrCodeTooLong)
}

func TestTieBreak(t *testing.T) {
	// Equal frequencies: leaves are ordered by symbol, so the lower
	// symbol gets the 0 branch at every level.
	_, p, err := Encode([]byte{3, 1, 2, 0})
	require.NoError(t, err)
	require.Equal(t, 2, p.MaxLen)
	require.Equal(t, []Entry{{0, 2, 0}, {1, 2, 1}, {2, 2, 2}, {3, 2, 3}}, p.LUT)
}

func TestLookupTableCoverage(t *testing.T) {
	for _, data := range [][]byte{skewed(3000), randomBytes(3, 2000, 256), []byte("abracadabra")} {
		_, p, err := Encode(data)
		require.NoError(t, err)
		for i := 1; i < len(p.LUT); i++ {
			require.Less(t, p.LUT[i-1].Code, p.LUT[i].Code)
		}
		tab, err := lookupTable(p)
		require.NoError(t, err)
		require.Len(t, tab, 1<<p.MaxLen)
		for i, v := range tab {
			require.NotZero(t, v>>8, "entry %d unfilled", i)
		}
	}
}

func TestInvalidLUT(t *testing.T) {
	payload, p, err := Encode([]byte("abracadabra"))
	require.NoError(t, err)

	for _, tc := range []struct {
		name string
		edit func(p *Params)
	}{
		{"one entry", func(p *Params) { p.LUT = p.LUT[:1] }},
		{"no entries", func(p *Params) { p.LUT = nil }},
		{"max length zero", func(p *Params) { p.MaxLen = 0 }},
		{"max length too big", func(p *Params) { p.MaxLen = 32 }},
		{"unsorted", func(p *Params) { p.LUT[1], p.LUT[2] = p.LUT[2], p.LUT[1] }},
		{"gap", func(p *Params) { p.LUT = p.LUT[:len(p.LUT)-1] }},
		{"length zero", func(p *Params) { p.LUT[0].Len = 0 }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			q := *p
			q.LUT = append([]Entry(nil), p.LUT...)
			tc.edit(&q)
			_, _, err := Decode(payload, &q)
			require.ErrorIs(t, err, imcompress.ErrInvalidLUT)
		})
	}
}

func TestDecodeCountTooLarge(t *testing.T) {
	payload, p, err := Encode([]byte("abracadabra"))
	require.NoError(t, err)
	p.Count = uint64(len(payload))*8 + 1
	_, _, err = Decode(payload, p)
	require.ErrorIs(t, err, imcompress.ErrBadData)
}

func TestDecodeLongCodesEmptyPayload(t *testing.T) {
	p := &Params{MaxLen: MaxCodeLen, Count: 1}
	var next uint32
	for l := 1; l <= MaxCodeLen; l++ {
		p.LUT = append(p.LUT, Entry{Sym: byte(l), Len: byte(l), Code: next})
		next += 1 << (MaxCodeLen - l)
	}
	p.LUT = append(p.LUT, Entry{Sym: 0, Len: MaxCodeLen, Code: next})
	_, _, err := Decode(nil, p)
	require.ErrorIs(t, err, imcompress.ErrBadData)
}

func TestDecodeTruncatedPadding(t *testing.T) {
	data := randomBytes(4, 1000, 16)
	payload, p, err := Encode(data)
	require.NoError(t, err)

	_, pad, err := Decode(payload[:len(payload)-2], p)
	require.NoError(t, err)
	require.Greater(t, pad, p.MaxLen)
}

func TestParamsWire(t *testing.T) {
	_, p, err := Encode(skewed(1000))
	require.NoError(t, err)
	b, err := p.AppendBinary([]byte("xx"))
	require.NoError(t, err)
	require.Len(t, b, 2+p.Size())

	q, n, err := ParseParams(append(b[2:], 0xaa, 0xbb))
	require.NoError(t, err)
	require.Equal(t, p.Size(), n)
	require.Equal(t, p, q)

	for _, cut := range []int{0, 5, 11, p.Size() - 1} {
		_, _, err := ParseParams(b[2 : 2+cut])
		require.ErrorIs(t, err, imcompress.ErrBadData, "cut at %d", cut)
	}
}

func TestParamsLayout(t *testing.T) {
	p := &Params{MaxLen: 2, Count: 0x0102030405060708, LUT: []Entry{
		{'a', 1, 0}, {'b', 2, 2}, {'c', 2, 3},
	}}
	b, err := p.AppendBinary(nil)
	require.NoError(t, err)
	require.Equal(t, []byte{
		0, 2,
		1, 2, 3, 4, 5, 6, 7, 8,
		0, 3,
		'a', 1, 0, 0, 0, 0,
		'b', 2, 0, 0, 0, 2,
		'c', 2, 0, 0, 0, 3,
	}, b)
}

func TestPackUnpack(t *testing.T) {
	data := skewed(5000)
	b, err := Pack([]byte("hdr"), data)
	require.NoError(t, err)
	require.Equal(t, []byte("hdr"), b[:3])
	out, err := Unpack(b[3:])
	require.NoError(t, err)
	require.Equal(t, data, out)

	_, err = Unpack(b[3 : len(b)-3])
	require.ErrorIs(t, err, imcompress.ErrBadData)
	_, err = Unpack(b[3:10])
	require.ErrorIs(t, err, imcompress.ErrBadData)
	_, err = Pack(nil, []byte{7, 7, 7})
	require.ErrorIs(t, err, imcompress.ErrEmptyInput)
}
