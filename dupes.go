package macicons

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// DuplicateGroups hashes every PNG in dir and returns the groups of
// byte-identical files, each group sorted by name. Collections often ship
// the same bitmap under several names; the report lets a curator prune
// them without guessing.
func DuplicateGroups(dir string) ([][]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "read output dir")
	}
	byHash := make(map[uint64][]string)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "hash %s", e.Name())
		}
		h := xxhash.Sum64(data)
		byHash[h] = append(byHash[h], e.Name())
	}
	var groups [][]string
	for _, g := range byHash {
		if len(g) < 2 {
			continue
		}
		sort.Strings(g)
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups, nil
}
