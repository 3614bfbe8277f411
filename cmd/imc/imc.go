package main

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"syscall"
	"time"

	"github.com/unixdj/imcompress"
	"github.com/unixdj/imcompress/bmp"
	"github.com/unixdj/imcompress/im3"
	"github.com/unixdj/imcompress/in3"

	"github.com/mattn/go-isatty"
	"github.com/pborman/getopt/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var g = struct {
	fn      string  // output filename, "" for standard output
	codec   string  // im3 or in3, "" to detect on decode
	format  int     // decoded image format, index into formats
	quality quality // im3 quantization scale
	width   int     // preview width
	decode  bool    // decode
	report  bool    // print compression ratios
	psnr    bool    // print round trip error
	verbose bool    // verbose
}{
	quality: im3.DefaultQuality,
}

func printUsage(w io.Writer) {
	cl := getopt.CommandLine
	fmt.Fprint(w, "Image compressor\nUsage: ", cl.Program(), " ",
		cl.UsageLine(), ` [file]
Compresses a BMP, PNG, JPEG, GIF, TIFF or WebP image into an im3
(lossy) or in3 (lossless) container, or with -d decodes a container.
If no file is given, standard input is read.

`)
	cl.PrintOptions(w)
}

type opt func()

func (opt) String() string                    { return "" }
func (o opt) Set(string, getopt.Option) error { o(); return nil }

func usage() {
	printUsage(os.Stderr)
	os.Exit(2)
}

func help() {
	printUsage(os.Stdout)
	os.Exit(0)
}

func version() {
	fmt.Println(`imc version 0.1.0
Copyright (c) 2024 Vadim Vygonets`)
	os.Exit(0)
}

type quality float64

func (q *quality) String() string {
	return strconv.FormatFloat(float64(*q), 'g', -1, 64)
}

func (q *quality) Set(s string, _ getopt.Option) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !(v > 0) || math.IsInf(v, 0) {
		return fmt.Errorf("%q: bad quality scale", s)
	}
	*q = quality(v)
	return nil
}

func parseFlags() {
	getopt.SetUsage(usage)
	getopt.Flag(opt(help), 'h', "show this help").SetFlag()
	getopt.Flag(opt(version), 'V', "print version and copyright").SetFlag()
	getopt.Flag(&g.decode, 'd', "decode a container")
	codec := getopt.Enum('t', []string{"im3", "in3"}, "",
		`container type; when encoding, default is im3; `+
			`when decoding, detected from the data`, "im3|in3")
	getopt.Flag(&g.quality, 'q', `quantization scale for im3, `+
		`larger is smaller and coarser; must match when decoding; `+
		`at large scales, or for a uniformly black image, every `+
		`coefficient is zero and im3 fails`,
		"scale")
	fno := getopt.Flag(&g.fn, 'o', `output file, or "-" for `+
		`standard output`, "file")
	ff := getopt.Enum('f', formats, "", `decoded image format, one of: `+
		fmtList()+`; if no -o is given and standard output is a TTY, `+
		`default is utf8, otherwise bmp`, "format")
	width := getopt.Unsigned('w', 80, &getopt.UnsignedLimit{Base: 0, Bits: 16, Min: 1, Max: 1000},
		"preview width in characters", "cols")
	getopt.Flag(&g.report, 'r', `print compression ratios to standard `+
		`error; the container is only written if -o is given`)
	getopt.Flag(&g.psnr, 'p', "decode the new container and print "+
		"the error against the input")
	getopt.Flag(&g.verbose, 'v', "verbose")

	getopt.Parse()
	if len(getopt.Args()) > 1 {
		usage()
	}
	if g.decode && (g.report || g.psnr) {
		fmt.Fprintln(os.Stderr, "-d is incompatible with -r and -p")
		usage()
	}
	g.codec = *codec
	if g.codec == "" && !g.decode {
		g.codec = "im3"
	}
	g.width = int(*width)
	if *ff == "" {
		if !fno.Seen() && isatty.IsTerminal(uintptr(syscall.Stdout)) {
			*ff = "utf8"
		} else {
			*ff = "bmp"
		}
	}
	for i, v := range formats {
		if *ff == v {
			g.format = i
			break
		}
	}
	if g.report && !fno.Seen() {
		g.fn = os.DevNull
	}
	if g.fn == "-" {
		g.fn = ""
	}
}

func main() {
	log.SetFlags(0)
	parseFlags()

	var (
		in  []byte
		err error
	)
	if args := getopt.Args(); len(args) != 0 && args[0] != "-" {
		in, err = os.ReadFile(args[0])
	} else {
		in, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		log.Fatalln(err)
	}
	if g.decode {
		m, err := decode(in)
		if err != nil {
			log.Fatalln(err)
		}
		write(binaryFormats[g.format], func(w io.Writer) error {
			return renderers[g.format](w).Render(m)
		})
		return
	}

	f, err := load(in)
	if err != nil {
		log.Fatalln(err)
	}
	start := time.Now()
	out, err := encode(f)
	if err != nil {
		log.Fatalln(err)
	}
	elapsed := time.Since(start)
	if g.verbose {
		log.Printf("%dx%d image, %s, %d bytes, %v",
			f.Width, f.Height, g.codec, len(out), elapsed)
		if g.codec == "im3" && (f.Width%16 != 0 || f.Height%16 != 0) {
			log.Println("size not a multiple of 16; chroma not subsampled")
		}
	}
	if g.report {
		if err := report(os.Stderr, f, out, elapsed); err != nil {
			log.Fatalln(err)
		}
	}
	if g.psnr {
		d, err := decode(out)
		if err != nil {
			log.Fatalln(err)
		}
		mse, err := imcompress.MSE(f.Image, d)
		if err != nil {
			log.Fatalln(err)
		}
		psnr, _ := imcompress.PSNR(f.Image, d)
		log.Printf("MSE: %.4g PSNR: %.4g dB", mse, psnr)
	}
	write(true, func(w io.Writer) error {
		_, err := w.Write(out)
		return err
	})
}

// load parses raw as a 24-bit BMP file, or failing that as any
// registered image format converted to one.
func load(raw []byte) (*bmp.File, error) {
	f, err := bmp.Decode(raw)
	if err == nil {
		return f, nil
	}
	m, _, ierr := image.Decode(bytes.NewReader(raw))
	if ierr != nil {
		if bytes.HasPrefix(raw, []byte("BM")) {
			return nil, err
		}
		return nil, ierr
	}
	b, err := bmp.Encode(imcompress.FromImage(m))
	if err != nil {
		return nil, err
	}
	return bmp.Decode(b)
}

func encode(f *bmp.File) ([]byte, error) {
	if g.codec == "in3" {
		return in3.Encode(f)
	}
	b, err := im3.Encode(f.Image, &im3.Options{Quality: float64(g.quality)})
	if errors.Is(err, imcompress.ErrEmptyInput) {
		return nil, fmt.Errorf("%w: image quantizes to a flat block "+
			"at scale %v; use a smaller -q, or -t in3", err, &g.quality)
	}
	return b, err
}

func decode(data []byte) (*imcompress.Image, error) {
	codec := g.codec
	if codec == "" {
		codec = "in3"
		if bytes.HasPrefix(data, []byte(im3.Magic)) {
			codec = "im3"
		}
	}
	if codec == "im3" {
		return im3.Decode(data, &im3.Options{Quality: float64(g.quality)})
	}
	f, err := in3.Decode(data)
	if err != nil {
		return nil, err
	}
	return f.Image, nil
}

// write calls fn with the output file.  Binary data is not written
// to a terminal.
func write(binary bool, fn func(w io.Writer) error) {
	w := os.Stdout
	open := g.fn != ""
	if open {
		var err error
		if w, err = os.OpenFile(g.fn, os.O_WRONLY|os.O_CREATE|os.O_TRUNC,
			0666); err != nil {
			log.Fatalln(err)
		}
	} else if binary && isatty.IsTerminal(uintptr(syscall.Stdout)) {
		log.Fatalln("refusing to write binary data to a terminal; use -o")
	}
	err := fn(w)
	if open && err == nil {
		err = w.Close()
	}
	if err != nil {
		log.Fatalln(err)
	}
}
