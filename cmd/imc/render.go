package main

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"
	"time"

	"github.com/unixdj/imcompress"
	"github.com/unixdj/imcompress/bmp"
	"github.com/unixdj/imcompress/huffman"
	"github.com/unixdj/imcompress/lzw"

	"github.com/klauspost/compress/zstd"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var formats = []string{"bmp", "png", "ppm", "utf8", "cp437", "ascii"}

var binaryFormats = [...]bool{true, true, true, false, false, false}

var renderers = [...]func(w io.Writer) imcompress.Renderer{
	func(w io.Writer) imcompress.Renderer {
		return imcompress.RendererFunc(func(m *imcompress.Image) error {
			b, err := bmp.Encode(m)
			if err != nil {
				return err
			}
			_, err = w.Write(b)
			return err
		})
	},
	func(w io.Writer) imcompress.Renderer {
		return imcompress.RendererFunc(func(m *imcompress.Image) error {
			return png.Encode(w, m)
		})
	},
	func(w io.Writer) imcompress.Renderer {
		return imcompress.RendererFunc(func(m *imcompress.Image) error {
			return m.EncodePPM(w)
		})
	},
	func(w io.Writer) imcompress.Renderer {
		return preview{w, blockRamp, g.width}
	},
	func(w io.Writer) imcompress.Renderer {
		return preview{charmap.CodePage437.NewEncoder().Writer(w), blockRamp, g.width}
	},
	func(w io.Writer) imcompress.Renderer {
		return preview{w, asciiRamp, g.width}
	},
}

func fmtList() string {
	return strings.Join(formats, ", ")
}

// Shades from dark to light.  The block characters all exist in code
// page 437.
var (
	blockRamp = []string{" ", "░", "▒", "▓", "█"}
	asciiRamp = []string{" ", ".", ":", "-", "=", "+", "*", "#", "%", "@"}
)

// A preview renders an image as text, one character per cell of
// about 1x2 pixels after scaling to the width.
type preview struct {
	w     io.Writer
	ramp  []string
	width int
}

func (p preview) Render(m *imcompress.Image) error {
	cols := min(p.width, m.Width)
	rows := max(m.Height*cols/m.Width/2, 1)
	dst := image.NewGray(image.Rect(0, 0, cols, rows))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), m, m.Bounds(), xdraw.Src, nil)
	var b strings.Builder
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := int(dst.GrayAt(x, y).Y)
			b.WriteString(p.ramp[v*len(p.ramp)/256])
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}

// report prints the sizes of f coded by the individual entropy
// coders and by the container codec, with the ratios to the input.
// Coders that cannot code the body are listed with the error.
func report(w io.Writer, f *bmp.File, out []byte, d time.Duration) error {
	p := message.NewPrinter(language.English)
	in := len(f.Header) + len(f.Body)
	line := func(name string, b []byte, err error) {
		if err != nil {
			p.Fprintf(w, "%-8s %v\n", name, err)
			return
		}
		p.Fprintf(w, "%-8s %12d bytes %8.3f:1\n",
			name, len(b), float64(in)/float64(len(b)))
	}
	p.Fprintf(w, "%-8s %12d bytes\n", "input", in)
	h, err := huffman.Pack(nil, f.Body)
	line("huffman", h, err)
	if err == nil {
		l, err := lzw.Encode(h)
		line("+lzw", l, err)
	}
	l, err := lzw.Encode(f.Body)
	line("lzw", l, err)
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("zstd: %w", err)
	}
	z := enc.EncodeAll(f.Body, nil)
	if err := enc.Close(); err != nil {
		return fmt.Errorf("zstd: %w", err)
	}
	line("zstd", z, nil)
	line(g.codec, out, nil)
	p.Fprintf(w, "encoded in %v\n", d)
	return nil
}
