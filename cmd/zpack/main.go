package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/kr/pretty"
	"github.com/urfave/cli/v2"

	"github.com/andybalholm/zpack"
	"github.com/andybalholm/zpack/flate"
	"github.com/andybalholm/zpack/internal/cpu"
	"github.com/andybalholm/zpack/internal/kernel"
)

func main() {
	app := cli.App{
		Name:  "zpack",
		Usage: "Compress and inspect DEFLATE, zlib and gzip streams",
		Commands: []*cli.Command{
			{
				Name:      "compress",
				Usage:     "Compress a file",
				Action:    compress,
				ArgsUsage: "IN OUT",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "level", Value: flate.DefaultCompression, Usage: "compression level, 0-9 or -1"},
					&cli.StringFlag{Name: "format", Value: "gzip", Usage: "raw, zlib or gzip"},
					&cli.IntFlag{Name: "window", Value: 15, Usage: "window size, as a power of two"},
					&cli.StringFlag{Name: "strategy", Value: "default", Usage: "default, filtered, huffman, rle or fixed"},
					&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log every block"},
				},
			},
			{
				Name:      "decompress",
				Usage:     "Decompress a file",
				Action:    decompress,
				ArgsUsage: "IN OUT",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: "gzip", Usage: "raw, zlib or gzip"},
				},
			},
			{
				Name:      "trace",
				Usage:     "Print the matches found in a file",
				Action:    trace,
				ArgsUsage: "IN",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "level", Value: 6, Usage: "compression level, 1-9"},
					&cli.BoolFlag{Name: "blocks", Usage: "mark block boundaries with '|'"},
				},
			},
			{
				Name:   "caps",
				Usage:  "Show the processor features and the kernels selected for them",
				Action: caps,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func openFiles(ctx *cli.Context) (*os.File, *os.File, error) {
	if ctx.NArg() != 2 {
		return nil, nil, fmt.Errorf("%s needs an input and an output file", ctx.Command.Name)
	}
	in, err := os.Open(ctx.Args().Get(0))
	if err != nil {
		return nil, nil, err
	}
	out, err := os.Create(ctx.Args().Get(1))
	if err != nil {
		in.Close()
		return nil, nil, err
	}
	return in, out, nil
}

func compress(ctx *cli.Context) error {
	cfg := flate.DefaultConfig()
	cfg.Level = ctx.Int("level")
	cfg.WindowBits = ctx.Int("window")
	var err error
	if cfg.Format, err = flate.ParseFormat(ctx.String("format")); err != nil {
		return err
	}
	if cfg.Strategy, err = flate.ParseStrategy(ctx.String("strategy")); err != nil {
		return err
	}
	if ctx.Bool("verbose") {
		cfg.Logger = log.New(os.Stderr, "", 0)
	}

	in, out, err := openFiles(ctx)
	if err != nil {
		return err
	}
	defer in.Close()

	if cfg.Format == flate.Gzip {
		if fi, err := in.Stat(); err == nil {
			cfg.Header = &flate.GzipHeader{Name: fi.Name(), ModTime: fi.ModTime(), OS: 255}
			if cfg.Header.Validate() != nil {
				cfg.Header.Name = ""
			}
		}
	}

	st, err := compressStream(out, in, cfg)
	if err = closeOutput(out, err); err != nil {
		return err
	}
	log.Printf("%d -> %d bytes (%d stored, %d fixed, %d dynamic blocks)",
		st.TotalIn, st.TotalOut, st.StoredBlocks, st.FixedBlocks, st.DynamicBlocks)
	return nil
}

func compressStream(out io.Writer, in io.Reader, cfg flate.Config) (flate.Stats, error) {
	bw := bufio.NewWriter(out)
	zw, err := flate.NewWriterConfig(bw, cfg)
	if err != nil {
		return flate.Stats{}, err
	}
	if _, err := io.Copy(zw, in); err != nil {
		return flate.Stats{}, err
	}
	if err := zw.Close(); err != nil {
		return flate.Stats{}, err
	}
	return zw.Compressor().Stats(), bw.Flush()
}

// closeOutput closes a file that has just been written, returning err or,
// if there was none, the error from Close.
func closeOutput(out io.Closer, err error) error {
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}

func decompress(ctx *cli.Context) error {
	format, err := flate.ParseFormat(ctx.String("format"))
	if err != nil {
		return err
	}
	in, out, err := openFiles(ctx)
	if err != nil {
		return err
	}
	defer in.Close()
	return closeOutput(out, decompressStream(out, in, format))
}

func decompressStream(out io.Writer, in io.Reader, format flate.Format) error {
	var r io.ReadCloser
	var err error
	br := bufio.NewReader(in)
	switch format {
	case flate.Raw:
		r = flate.NewReader(br)
	case flate.Zlib:
		r, err = flate.NewZlibReader(br)
	case flate.Gzip:
		r, err = flate.NewGZIPReader(br)
	}
	if err != nil {
		return err
	}
	defer r.Close()
	_, err = io.Copy(out, r)
	return err
}

func trace(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("trace needs an input file")
	}
	data, err := os.ReadFile(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(os.Stdout)
	w := &zpack.Writer{
		Dest:        bw,
		MatchFinder: flate.NewMatchFinder(ctx.Int("level")),
		Encoder:     zpack.TextEncoder{BlockMarks: ctx.Bool("blocks")},
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return bw.Flush()
}

func caps(ctx *cli.Context) error {
	f := cpu.Detect()
	fmt.Println(f)
	pretty.Println(f)
	pretty.Println(kernel.Default().Names)
	return nil
}
