// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package imcompress

import (
	"fmt"
	"math"
)

// MSE returns the mean squared error between the channels of a and b,
// which must have the same size.
func MSE(a, b *Image) (float64, error) {
	if a.Width != b.Width || a.Height != b.Height || len(a.Pix) != len(b.Pix) {
		return 0, fmt.Errorf("comparing %dx%d and %dx%d images: %w",
			a.Width, a.Height, b.Width, b.Height, ErrOutOfRange)
	}
	if len(a.Pix) == 0 {
		return 0, nil
	}
	var sum float64
	for i, v := range a.Pix {
		d := float64(v) - float64(b.Pix[i])
		sum += d * d
	}
	return sum / float64(len(a.Pix)), nil
}

// PSNR returns the peak signal to noise ratio of b relative to a in
// decibels.  Identical images give +Inf.
func PSNR(a, b *Image) (float64, error) {
	mse, err := MSE(a, b)
	if err != nil {
		return 0, err
	}
	return 20*math.Log10(255) - 10*math.Log10(mse), nil
}
