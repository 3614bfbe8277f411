// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package imcompress

import "errors"

// Error kinds.  Operations wrap one of these with context, so callers
// should test with errors.Is.
var (
	ErrBadData     = errors.New("imcompress: malformed or truncated data")
	ErrEmptyInput  = errors.New("imcompress: input needs at least two distinct symbols")
	ErrInvalidLUT  = errors.New("imcompress: invalid Huffman lookup table")
	ErrCodeTooLong = errors.New("imcompress: Huffman codeword too long")
	ErrEncoding    = errors.New("imcompress: encoding error")
	ErrOutOfRange  = errors.New("imcompress: index out of range")
)
