// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package imcompress

import (
	"bufio"
	"io"
	"strconv"
)

// EncodePPM writes m to w as a binary Portable Pixel Map, for use
// with netpbm.
func (m *Image) EncodePPM(w io.Writer) error {
	if err := m.Check(); err != nil {
		return err
	}
	b := bufio.NewWriter(w)
	if _, err := b.WriteString("P6\n" + strconv.Itoa(m.Width) + " " +
		strconv.Itoa(m.Height) + "\n255\n"); err != nil {
		return err
	}
	if _, err := b.Write(m.Pix); err != nil {
		return err
	}
	return b.Flush()
}
