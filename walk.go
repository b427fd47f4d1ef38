package macicons

import (
	"bytes"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/amaezey/icon-archaeology/fork"
	"github.com/amaezey/icon-archaeology/internal/log"
)

// MarkerName is the file name Finder gives per-folder custom icon files:
// the word "Icon" with a trailing carriage return.
const MarkerName = "Icon\r"

// Folder names that say nothing about the icon; the collection name is
// used instead.
var genericFolderNames = map[string]bool{
	"icon":  true,
	"icons": true,
}

// WalkOptions adjusts a Walk. The zero value uses the defaults noted on
// each field.
type WalkOptions struct {
	// Marker is the per-folder custom-icon file name. Defaults to
	// MarkerName; archives whose extraction mangled the trailing CR can
	// override it.
	Marker string

	// Provider reads resource forks. Defaults to fork.Default().
	Provider fork.Provider

	// Workers bounds the number of icons decoded at once within each
	// pass. Defaults to 1.
	Workers int
}

// Stats counts the outcomes of one walk.
type Stats struct {
	Extracted int // icons written
	Skipped   int // items whose fork held no decodable icon
	NoFork    int // items without resource data, excluded silently
}

func (s *Stats) add(o Stats) {
	s.Extracted += o.Extracted
	s.Skipped += o.Skipped
	s.NoFork += o.NoFork
}

// A SourceItem is one extraction candidate discovered during a walk.
type SourceItem struct {
	Path       string // filesystem entry holding the resource fork
	Collection string // sanitized collection name
	Name       string // icon name derived by the discovering pass
}

// A Result records the outcome for one attempted SourceItem: the written
// basename on success, the failure otherwise.
type Result struct {
	Item SourceItem
	File string
	Err  error
}

// Walk extracts every icon under srcRoot into outRoot. Each immediate
// subdirectory of srcRoot is one collection. Per-item failures are
// counted and logged; only I/O errors on the roots or a collection
// directory itself abort the walk.
func Walk(srcRoot, outRoot string, opts WalkOptions) (Stats, error) {
	if opts.Marker == "" {
		opts.Marker = MarkerName
	}
	if opts.Provider == nil {
		opts.Provider = fork.Default()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	var stats Stats
	if err := os.MkdirAll(outRoot, 0755); err != nil {
		return stats, errors.Wrap(err, "create output root")
	}
	entries, err := os.ReadDir(srcRoot)
	if err != nil {
		return stats, errors.Wrap(err, "read source root")
	}

	w := &walker{
		opts:  opts,
		namer: &Namer{Dir: outRoot},
	}
	for _, ent := range entries {
		if !ent.IsDir() || strings.HasPrefix(ent.Name(), ".") {
			continue
		}
		cs, err := w.collection(filepath.Join(srcRoot, ent.Name()), ent.Name())
		if err != nil {
			return stats, err
		}
		if cs.Extracted > 0 {
			log.Infof("%s: extracted %d", ent.Name(), cs.Extracted)
		}
		stats.add(cs)
	}
	return stats, nil
}

type walker struct {
	opts      WalkOptions
	namer     *Namer
	extractor Extractor
}

// collection runs the two discovery passes over one collection directory.
// Pass A resolves marker files and records their paths as consumed; Pass B
// picks up every remaining file. The consumed set is complete before Pass
// B starts, so an icon reachable both ways is extracted exactly once.
func (w *walker) collection(dir, name string) (Stats, error) {
	collection := Sanitize(name)
	consumed := make(map[string]struct{})
	var stats Stats

	markers, err := w.findMarkers(dir)
	if err != nil {
		return stats, errors.Wrapf(err, "scan %s", name)
	}
	itemsA := make([]SourceItem, 0, len(markers))
	for _, path := range markers {
		consumed[path] = struct{}{}
		iconName := Sanitize(filepath.Base(filepath.Dir(path)))
		if iconName == "" || genericFolderNames[iconName] {
			iconName = collection
		}
		itemsA = append(itemsA, SourceItem{Path: path, Collection: collection, Name: iconName})
	}
	stats.add(w.extract(itemsA))

	itemsB, err := w.findFlat(dir, collection, consumed)
	if err != nil {
		return stats, errors.Wrapf(err, "scan %s", name)
	}
	stats.add(w.extract(itemsB))
	return stats, nil
}

// findMarkers collects every custom-icon marker file under dir.
func (w *walker) findMarkers(dir string) ([]string, error) {
	var markers []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			log.Debugf("skipping %s: %v", path, err)
			return nil
		}
		if !d.IsDir() && d.Name() == w.opts.Marker {
			markers = append(markers, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(markers)
	return markers, nil
}

// findFlat collects the remaining non-hidden, non-consumed files. The
// icon name comes from the file's own name.
func (w *walker) findFlat(dir, collection string, consumed map[string]struct{}) ([]SourceItem, error) {
	var items []SourceItem
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			log.Debugf("skipping %s: %v", path, err)
			return nil
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if _, ok := consumed[path]; ok {
			return nil
		}
		items = append(items, SourceItem{Path: path, Collection: collection, Name: Sanitize(d.Name())})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// extract decodes and writes a batch of items, at most opts.Workers at a
// time. Output names are claimed with O_EXCL, so parallel writers cannot
// collide.
func (w *walker) extract(items []SourceItem) Stats {
	var (
		mu    sync.Mutex
		stats Stats
	)
	var g errgroup.Group
	g.SetLimit(w.opts.Workers)
	for _, item := range items {
		item := item
		g.Go(func() error {
			res := w.extractOne(item)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case res.Err == nil:
				stats.Extracted++
				log.Debugf("%s -> %s", item.Path, res.File)
			case errors.Is(res.Err, fork.ErrNoFork), errors.Is(res.Err, ErrNoStream):
				stats.NoFork++
			default:
				stats.Skipped++
				log.Debugf("skip %s: %v", item.Path, res.Err)
			}
			return nil
		})
	}
	g.Wait()
	return stats
}

// extractOne resolves one item's fork to a raster and writes it. The PNG
// is encoded to memory first; no partial file ever lands in the output
// directory.
func (w *walker) extractOne(item SourceItem) Result {
	res := Result{Item: item}
	data, err := w.opts.Provider.Fork(item.Path)
	if err != nil {
		res.Err = err
		return res
	}
	m, err := w.extractor.Decode(data)
	if err != nil {
		res.Err = err
		return res
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, m); err != nil {
		res.Err = errors.Wrap(err, "encode png")
		return res
	}
	f, name, err := w.namer.Create(item.Collection, item.Name)
	if err != nil {
		res.Err = errors.Wrap(err, "create output")
		return res
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		os.Remove(f.Name())
		res.Err = errors.Wrap(err, "write output")
		return res
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		res.Err = errors.Wrap(err, "write output")
		return res
	}
	res.File = name
	return res
}
