// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package huffman

import (
	"encoding/binary"
	"fmt"

	"github.com/unixdj/imcompress"
)

// Serialized parameters, all big endian:
//
//	2 bytes   max codeword length
//	8 bytes   symbol count
//	2 bytes   number of LUT entries
//	6 bytes   per entry: symbol, codeword length, 4 byte codeword
const (
	paramsHeaderLen = 12
	entryLen        = 6
)

// Size returns the serialized size of p.
func (p *Params) Size() int { return paramsHeaderLen + entryLen*len(p.LUT) }

// AppendBinary appends the serialized form of p to b.
func (p *Params) AppendBinary(b []byte) ([]byte, error) {
	if len(p.LUT) > 0xffff || p.MaxLen < 0 || p.MaxLen > 0xffff {
		return nil, fmt.Errorf("huffman: %d entries, max length %d: %w",
			len(p.LUT), p.MaxLen, imcompress.ErrInvalidLUT)
	}
	b = binary.BigEndian.AppendUint16(b, uint16(p.MaxLen))
	b = binary.BigEndian.AppendUint64(b, p.Count)
	b = binary.BigEndian.AppendUint16(b, uint16(len(p.LUT)))
	for _, e := range p.LUT {
		b = append(b, e.Sym, e.Len)
		b = binary.BigEndian.AppendUint32(b, e.Code)
	}
	return b, nil
}

// ParseParams parses serialized parameters at the start of b and
// returns them with the number of bytes consumed.  The LUT is checked
// by Decode, not here.
func ParseParams(b []byte) (*Params, int, error) {
	if len(b) < paramsHeaderLen {
		return nil, 0, fmt.Errorf("huffman: %d byte parameter header: %w",
			len(b), imcompress.ErrBadData)
	}
	p := &Params{
		MaxLen: int(binary.BigEndian.Uint16(b)),
		Count:  binary.BigEndian.Uint64(b[2:]),
	}
	n := int(binary.BigEndian.Uint16(b[10:]))
	size := paramsHeaderLen + entryLen*n
	if len(b) < size {
		return nil, 0, fmt.Errorf("huffman: %d LUT entries in %d bytes: %w",
			n, len(b)-paramsHeaderLen, imcompress.ErrBadData)
	}
	p.LUT = make([]Entry, n)
	for i := range p.LUT {
		e := b[paramsHeaderLen+entryLen*i:]
		p.LUT[i] = Entry{e[0], e[1], binary.BigEndian.Uint32(e[2:])}
	}
	return p, size, nil
}

// Pack compresses data and appends the serialized parameters followed
// by the payload to dst.
func Pack(dst, data []byte) ([]byte, error) {
	payload, p, err := Encode(data)
	if err != nil {
		return nil, err
	}
	if dst, err = p.AppendBinary(dst); err != nil {
		return nil, err
	}
	return append(dst, payload...), nil
}

// Unpack reverses Pack.  Everything in b after the parameters is
// taken as payload; a payload too short for its symbol count fails
// with ErrBadData.
func Unpack(b []byte) ([]byte, error) {
	p, n, err := ParseParams(b)
	if err != nil {
		return nil, err
	}
	out, pad, err := Decode(b[n:], p)
	if err != nil {
		return nil, err
	}
	if pad > p.MaxLen {
		return nil, fmt.Errorf("huffman: payload short by %d bits: %w",
			pad-p.MaxLen, imcompress.ErrBadData)
	}
	return out, nil
}
