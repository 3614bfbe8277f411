// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package huffman_test

import (
	"fmt"
	"log"

	"github.com/unixdj/imcompress/huffman"
)

func Example() {
	payload, p, err := huffman.Encode([]byte("abracadabra"))
	if err != nil {
		log.Fatalln(err)
	}
	fmt.Printf("payload %x, %d symbols, max length %d\n", payload, p.Count, p.MaxLen)
	for _, e := range p.LUT {
		fmt.Printf("%q %0*b\n", e.Sym, int(e.Len), e.Code>>(p.MaxLen-int(e.Len)))
	}

	out, pad, err := huffman.Decode(payload, p)
	if err != nil {
		log.Fatalln(err)
	}
	fmt.Printf("%s, %d padding bits\n", out, pad)
	// Output:
	// payload 6e8adc, 11 symbols, max length 3
	// 'a' 0
	// 'c' 100
	// 'd' 101
	// 'b' 110
	// 'r' 111
	// abracadabra, 2 padding bits
}
