// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package in3 implements the lossless image codec.

Every byte of the BMP body from the fourth on is replaced by the
magnitude of its difference from the byte three positions earlier, the
same channel of the previous pixel, and the signs go to a separate
bit stream, 1 for negative.  The first three bytes are kept as they
are.  The delta record,

	8 bytes   magnitude count
	          magnitudes
	8 bytes   sign byte count
	          sign bits, most significant first

is Huffman coded.  The container is the BMP header, unchanged,
followed by the Huffman parameters and payload.  Lengths are big
endian.
*/
package in3 // import "github.com/unixdj/imcompress/in3"

import (
	"encoding/binary"
	"fmt"

	"github.com/unixdj/imcompress"
	"github.com/unixdj/imcompress/bits"
	"github.com/unixdj/imcompress/bmp"
	"github.com/unixdj/imcompress/huffman"
)

// lag is the distance between a byte and its predictor.
const lag = 3

// deltas returns the delta record for body.
func deltas(body []byte) []byte {
	n := len(body)
	rec := make([]byte, 8, 8+n+8+(n+7)/8)
	binary.BigEndian.PutUint64(rec, uint64(n))
	rec = append(rec, body[:lag]...)
	w := bits.NewWriter((n - lag + 7) / 8)
	for i := lag; i < n; i++ {
		d := int(body[i]) - int(body[i-lag])
		w.WriteBit(d < 0)
		if d < 0 {
			d = -d
		}
		rec = append(rec, byte(d))
	}
	w.Flush()
	rec = binary.BigEndian.AppendUint64(rec, uint64(len(w.Bytes())))
	return append(rec, w.Bytes()...)
}

func badRecord(format string, a ...any) error {
	return fmt.Errorf("in3: delta record: "+format+": %w", append(a, imcompress.ErrBadData)...)
}

// body reverses deltas.
func body(rec []byte) ([]byte, error) {
	if len(rec) < 8 {
		return nil, badRecord("%d bytes", len(rec))
	}
	n := binary.BigEndian.Uint64(rec)
	rec = rec[8:]
	if n < lag || n > uint64(len(rec)) {
		return nil, badRecord("%d magnitudes in %d bytes", n, len(rec))
	}
	mag, rec := rec[:n], rec[n:]
	if len(rec) < 8 {
		return nil, badRecord("sign length missing")
	}
	ns := binary.BigEndian.Uint64(rec)
	rec = rec[8:]
	if want := (n - lag + 7) / 8; ns != want || ns != uint64(len(rec)) {
		return nil, badRecord("%d sign bytes for %d magnitudes, %d present", ns, n, len(rec))
	}
	out := make([]byte, n)
	copy(out, mag[:lag])
	r := bits.NewReader(rec)
	for i := lag; i < len(out); i++ {
		neg, _ := r.ReadBit()
		v := int(out[i-lag]) + int(mag[i])
		if neg {
			v = int(out[i-lag]) - int(mag[i])
		}
		if v < 0 || v > 0xff {
			return nil, badRecord("sample %d out of range", i)
		}
		out[i] = byte(v)
	}
	return out, nil
}

// Encode compresses f.  f.Header is stored verbatim and must end at
// the data offset it records.
func Encode(f *bmp.File) ([]byte, error) {
	if f == nil || len(f.Body) < lag {
		return nil, fmt.Errorf("in3: empty body: %w", imcompress.ErrBadData)
	}
	if n, err := bmp.HeaderLen(f.Header); err != nil {
		return nil, fmt.Errorf("in3: %w", err)
	} else if n != len(f.Header) {
		return nil, fmt.Errorf("in3: %d byte header with data offset %d: %w",
			len(f.Header), n, imcompress.ErrBadData)
	}
	if n, err := bmp.BodyLen(f.Header); err != nil {
		return nil, fmt.Errorf("in3: %w", err)
	} else if len(f.Body) < n {
		return nil, fmt.Errorf("in3: %d byte body for %d byte image: %w",
			len(f.Body), n, imcompress.ErrBadData)
	}
	out := append([]byte(nil), f.Header...)
	out, err := huffman.Pack(out, deltas(f.Body))
	if err != nil {
		return nil, fmt.Errorf("in3: %w", err)
	}
	return out, nil
}

// EncodeImage compresses m stored as a BMP file.
func EncodeImage(m *imcompress.Image) ([]byte, error) {
	raw, err := bmp.Encode(m)
	if err != nil {
		return nil, fmt.Errorf("in3: %w", err)
	}
	f, err := bmp.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("in3: %w", err)
	}
	return Encode(f)
}

// Decode decompresses data and parses the restored BMP file.
func Decode(data []byte) (*bmp.File, error) {
	n, err := bmp.HeaderLen(data)
	if err != nil {
		return nil, fmt.Errorf("in3: %w", err)
	}
	want, err := bmp.BodyLen(data[:n])
	if err != nil {
		return nil, fmt.Errorf("in3: %w", err)
	}
	rec, err := huffman.Unpack(data[n:])
	if err != nil {
		return nil, fmt.Errorf("in3: %w", err)
	}
	b, err := body(rec)
	if err != nil {
		return nil, err
	}
	if len(b) < want {
		return nil, fmt.Errorf("in3: %d byte body for %d byte image: %w",
			len(b), want, imcompress.ErrBadData)
	}
	f, err := bmp.Decode(append(data[:n:n], b...))
	if err != nil {
		return nil, fmt.Errorf("in3: %w", err)
	}
	return f, nil
}
