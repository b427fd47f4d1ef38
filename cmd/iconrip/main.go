// Command iconrip extracts classic Mac OS icons from the resource forks
// under a source tree and writes 32x32 PNGs into an output directory.
//
// Usage:
//
//	iconrip [-j n] [-marker name] [-dupes] [-v] <source dir> <output dir>
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	macicons "github.com/amaezey/icon-archaeology"
	"github.com/amaezey/icon-archaeology/internal/log"
)

var (
	workers int
	marker  string
	dupes   bool
	verbose bool
)

func main() {
	flag.IntVar(&workers, "j", 4, "icons decoded in parallel")
	flag.StringVar(&marker, "marker", macicons.MarkerName, "custom-icon marker file name")
	flag.BoolVar(&dupes, "dupes", false, "report byte-identical outputs after extraction")
	flag.BoolVar(&verbose, "v", false, "log per-item outcomes")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <source dir> <output dir>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	log.EnableDebug = verbose

	stats, err := macicons.Walk(flag.Arg(0), flag.Arg(1), macicons.WalkOptions{
		Marker:  marker,
		Workers: workers,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("Extracted: %d\n", stats.Extracted)
	fmt.Printf("Skipped:   %d\n", stats.Skipped)
	if verbose {
		fmt.Printf("No fork:   %d\n", stats.NoFork)
	}

	if dupes {
		groups, err := macicons.DuplicateGroups(flag.Arg(1))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		for _, g := range groups {
			fmt.Printf("dup: %s\n", strings.Join(g, " "))
		}
	}
}
