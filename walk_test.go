package macicons

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/amaezey/icon-archaeology/rsrc"
)

func writeFork(t testing.TB, path string, fork []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path+".rsrc", fork, 0644); err != nil {
		t.Fatal(err)
	}
}

func readOutput(t testing.TB, dir, name string) image.Image {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	m, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func outputNames(t testing.TB, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// A structured collection: one marker file per icon folder, masked with a
// same-id ICN# record. The marker must be extracted by the structured
// pass only, even though the flat pass revisits the tree.
func TestWalkStructuredCollection(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	fork := buildFork(t, []rec{
		{rsrc.TypeICL8, -16455, solidICL8(5)},
		{rsrc.TypeICN, -16455, cornerICN()},
	})
	writeFork(t, filepath.Join(src, "Demo", "Widget", MarkerName), fork)

	stats, err := Walk(src, out, WalkOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Extracted != 1 {
		t.Fatalf("extracted %d, want 1", stats.Extracted)
	}
	if stats.Skipped != 0 {
		t.Errorf("skipped %d, want 0", stats.Skipped)
	}
	if got := outputNames(t, out); len(got) != 1 || got[0] != "demo--widget.png" {
		t.Fatalf("output = %q, want [demo--widget.png]", got)
	}

	m := readOutput(t, out, "demo--widget.png")
	if m.Bounds() != image.Rect(0, 0, 32, 32) {
		t.Fatalf("bounds = %v", m.Bounds())
	}
	nrgba, ok := m.(*image.NRGBA)
	if !ok {
		t.Fatalf("got %T, want *image.NRGBA", m)
	}
	if a := nrgba.NRGBAAt(0, 0).A; a != 0xFF {
		t.Errorf("alpha at (0,0) = %d, want 255", a)
	}
	if a := nrgba.NRGBAAt(1, 0).A; a != 0 {
		t.Errorf("alpha at (1,0) = %d, want 0", a)
	}
}

// A flat collection: the file's own fork carries an icns container with
// an 8-bit mask and no ICN#; the mask bytes become the alpha channel.
func TestWalkFlatCollection(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	l8mk := make([]byte, rsrc.L8MKSize)
	for i := range l8mk {
		l8mk[i] = uint8((i * 7) % 256)
	}
	cont := buildContainer(
		celem{rsrc.TypeICL8, solidICL8(10)},
		celem{rsrc.TypeL8MK, l8mk},
	)
	writeFork(t, filepath.Join(src, "Flat", "Gear"), buildFork(t, []rec{{rsrc.TypeICNS, 0, cont}}))

	stats, err := Walk(src, out, WalkOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Extracted != 1 {
		t.Fatalf("extracted %d, want 1", stats.Extracted)
	}
	if got := outputNames(t, out); len(got) != 1 || got[0] != "flat--gear.png" {
		t.Fatalf("output = %q, want [flat--gear.png]", got)
	}

	nrgba := readOutput(t, out, "flat--gear.png").(*image.NRGBA)
	for i := 0; i < rsrc.L8MKSize; i++ {
		if a := nrgba.NRGBAAt(i%32, i/32).A; a != l8mk[i] {
			t.Fatalf("alpha %d = %d, want %d", i, a, l8mk[i])
		}
	}
}

// A marker directly under a folder named "icons" says nothing about the
// icon; the collection name stands in.
func TestWalkGenericFolderName(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	fork := buildFork(t, []rec{{rsrc.TypeICL8, 0, solidICL8(0)}})
	writeFork(t, filepath.Join(src, "Demo", "icons", MarkerName), fork)

	if _, err := Walk(src, out, WalkOptions{}); err != nil {
		t.Fatal(err)
	}
	if got := outputNames(t, out); len(got) != 1 || got[0] != "demo--demo.png" {
		t.Fatalf("output = %q, want [demo--demo.png]", got)
	}
}

func TestWalkCollisionSuffix(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	fork := buildFork(t, []rec{{rsrc.TypeICL8, 0, solidICL8(3)}})
	// "GEAR" and "Gear" both sanitize to "gear".
	writeFork(t, filepath.Join(src, "Flat", "GEAR"), fork)
	writeFork(t, filepath.Join(src, "Flat", "Gear"), fork)

	stats, err := Walk(src, out, WalkOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Extracted != 2 {
		t.Fatalf("extracted %d, want 2", stats.Extracted)
	}
	want := []string{"flat--gear-1.png", "flat--gear.png"}
	if got := outputNames(t, out); len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

// Items without resource data are excluded silently; items with a fork
// that holds no icon are counted as skipped. Neither stops the walk.
func TestWalkCounting(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	dir := filepath.Join(src, "Mixed")
	writeFork(t, filepath.Join(dir, "Good"), buildFork(t, []rec{{rsrc.TypeICL8, 0, solidICL8(1)}}))
	writeFork(t, filepath.Join(dir, "Bad"), buildFork(t, []rec{{"STR ", 0, []byte("nope")}}))
	if err := os.WriteFile(filepath.Join(dir, "Plain"), []byte("just a file"), 0644); err != nil {
		t.Fatal(err)
	}

	stats, err := Walk(src, out, WalkOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Extracted != 1 {
		t.Errorf("extracted %d, want 1", stats.Extracted)
	}
	if stats.Skipped != 1 {
		t.Errorf("skipped %d, want 1", stats.Skipped)
	}
	if stats.NoFork < 1 {
		t.Errorf("no-fork count = %d, want at least 1", stats.NoFork)
	}
}

// Hidden files never become candidates.
func TestWalkSkipsHiddenFiles(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	fork := buildFork(t, []rec{{rsrc.TypeICL8, 0, solidICL8(1)}})
	writeFork(t, filepath.Join(src, "Flat", ".hidden"), fork)

	stats, err := Walk(src, out, WalkOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Extracted != 0 {
		t.Fatalf("extracted %d from hidden files, want 0", stats.Extracted)
	}
}

// A parallel walk produces the same output set as a serial one.
func TestWalkParallel(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	for i := 0; i < 8; i++ {
		name := string(rune('A' + i))
		fork := buildFork(t, []rec{{rsrc.TypeICL8, 0, solidICL8(uint8(i))}})
		writeFork(t, filepath.Join(src, "Pack", name), fork)
	}

	stats, err := Walk(src, out, WalkOptions{Workers: 4})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Extracted != 8 {
		t.Fatalf("extracted %d, want 8", stats.Extracted)
	}
	if got := outputNames(t, out); len(got) != 8 {
		t.Fatalf("output count = %d, want 8: %q", len(got), got)
	}
}
