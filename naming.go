package macicons

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UnnamedIcon is the filename stem used when both the icon and collection
// names sanitize to nothing.
const UnnamedIcon = "unnamed"

// Sanitize lowercases a name and reduces it to [a-z0-9_-]. Every run of
// other characters becomes a single "-", and leading or trailing
// separators are dropped.
func Sanitize(name string) string {
	var b []byte
	sep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			if sep && len(b) > 0 {
				b = append(b, '-')
			}
			sep = false
			b = append(b, byte(r))
		default:
			sep = true
		}
	}
	return string(b)
}

// BaseName builds the "{collection}--{icon}" filename stem. An icon name
// that sanitizes to nothing falls back to the collection name, and then
// to UnnamedIcon.
func BaseName(collection, icon string) string {
	c := Sanitize(collection)
	ic := Sanitize(icon)
	if ic == "" {
		ic = c
	}
	if ic == "" {
		ic = UnnamedIcon
	}
	if c == "" {
		c = UnnamedIcon
	}
	return c + "--" + ic
}

// A Namer hands out unique PNG files in one output directory. Collisions
// get a numeric suffix before the extension; an existing file is never
// reopened, so concurrent callers cannot overwrite each other.
type Namer struct {
	Dir string
}

// Create opens a new file for the given collection and icon name and
// returns it along with its final basename.
func (n *Namer) Create(collection, icon string) (*os.File, string, error) {
	base := BaseName(collection, icon)
	name := base + ".png"
	for i := 1; ; i++ {
		f, err := os.OpenFile(filepath.Join(n.Dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, name, nil
		}
		if !os.IsExist(err) {
			return nil, "", err
		}
		name = fmt.Sprintf("%s-%d.png", base, i)
	}
}
