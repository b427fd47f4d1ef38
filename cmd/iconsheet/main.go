// Command iconsheet tiles the PNGs of an extraction run into one contact
// sheet for quick review.
//
// Usage:
//
//	iconsheet [-cols n] [-scale n] [-out sheet.png] <icons dir>
package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"image/png"

	xdraw "golang.org/x/image/draw"
)

var (
	cols  int
	scale int
	out   string
)

func main() {
	flag.IntVar(&cols, "cols", 16, "icons per row")
	flag.IntVar(&scale, "scale", 2, "integer upscale factor per icon")
	flag.StringVar(&out, "out", "sheet.png", "output file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <icons dir>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".png") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return fmt.Errorf("no PNGs in %s", dir)
	}
	sort.Strings(names)

	cell := 32 * scale
	rows := (len(names) + cols - 1) / cols
	sheet := image.NewNRGBA(image.Rect(0, 0, cols*cell, rows*cell))

	for i, name := range names {
		m, err := readPNG(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			continue
		}
		x := (i % cols) * cell
		y := (i / cols) * cell
		r := image.Rect(x, y, x+cell, y+cell)
		// Nearest neighbor keeps the pixel art crisp.
		xdraw.NearestNeighbor.Scale(sheet, r, m, m.Bounds(), xdraw.Over, nil)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, sheet)
}

func readPNG(filename string) (image.Image, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}
