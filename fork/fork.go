// Package fork reads the resource fork attached to a filesystem entry.
//
// On Mac-native filesystems the fork is a named stream next to the data
// fork; everywhere else it survives as one of the interchange encodings
// archives are shipped in. Each encoding is a Provider, and Default chains
// them in the order they are worth trying.
package fork

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ErrNoFork reports that an entry carries no resource data. This is the
// common case for ordinary files and is not an error condition.
var ErrNoFork = errors.New("fork: no resource data")

// A Provider reads the resource fork of the entry at path, or ErrNoFork
// when the entry has none.
type Provider interface {
	Fork(path string) ([]byte, error)
}

// Chain tries each provider in order and returns the first fork found.
type Chain []Provider

func (c Chain) Fork(path string) ([]byte, error) {
	for _, p := range c {
		data, err := p.Fork(path)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrNoFork) {
			return nil, err
		}
	}
	return nil, ErrNoFork
}

// Default returns the provider chain used by the walker: native named
// fork, AppleDouble sidecar, MacBinary envelope, raw .rsrc sidecar.
func Default() Provider {
	return Chain{NamedFork{}, AppleDouble{}, MacBinary{}, Sidecar{}}
}

// NamedFork reads a native macOS resource fork through the
// path/..namedfork/rsrc pseudo-path. On other systems the open fails with
// ENOTDIR or ENOENT, which both mean "no fork here".
type NamedFork struct{}

func (NamedFork) Fork(path string) ([]byte, error) {
	data, err := os.ReadFile(path + "/..namedfork/rsrc")
	if err != nil {
		return nil, ErrNoFork
	}
	if len(data) == 0 {
		return nil, ErrNoFork
	}
	return data, nil
}

// AppleDouble reads the resource fork out of a "._name" sidecar file, the
// encoding produced by macOS when writing to foreign filesystems.
type AppleDouble struct{}

const (
	appleDoubleMagic = 0x00051607
	appleSingleMagic = 0x00051600

	entryResourceFork = 2
)

type appleDoubleHeader struct {
	Magic   uint32
	Version uint32
	Filler  [16]byte
	Entries uint16
}

type appleDoubleEntry struct {
	ID     uint32
	Offset uint32
	Length uint32
}

func (AppleDouble) Fork(path string) ([]byte, error) {
	dir, name := filepath.Split(path)
	data, err := os.ReadFile(filepath.Join(dir, "._"+name))
	if err != nil {
		return nil, ErrNoFork
	}
	fork, err := appleDoubleFork(data)
	if err != nil {
		return nil, errors.Wrapf(err, "sidecar for %s", name)
	}
	return fork, nil
}

// appleDoubleFork locates the resource fork entry in an AppleDouble (or
// AppleSingle) header and returns its bytes.
func appleDoubleFork(data []byte) ([]byte, error) {
	const headerSize = 26
	if len(data) < headerSize {
		return nil, ErrNoFork
	}
	hdr := appleDoubleHeader{
		Magic:   binary.BigEndian.Uint32(data[0:]),
		Version: binary.BigEndian.Uint32(data[4:]),
		Entries: binary.BigEndian.Uint16(data[24:]),
	}
	if hdr.Magic != appleDoubleMagic && hdr.Magic != appleSingleMagic {
		return nil, ErrNoFork
	}
	for i := 0; i < int(hdr.Entries); i++ {
		off := headerSize + i*12
		if off+12 > len(data) {
			break
		}
		e := appleDoubleEntry{
			ID:     binary.BigEndian.Uint32(data[off:]),
			Offset: binary.BigEndian.Uint32(data[off+4:]),
			Length: binary.BigEndian.Uint32(data[off+8:]),
		}
		if e.ID != entryResourceFork {
			continue
		}
		if e.Length == 0 {
			return nil, ErrNoFork
		}
		if int64(e.Offset)+int64(e.Length) > int64(len(data)) {
			return nil, errors.New("fork: sidecar entry out of range")
		}
		return data[e.Offset : e.Offset+e.Length], nil
	}
	return nil, ErrNoFork
}

// MacBinary treats the file itself as a MacBinary envelope: a 128-byte
// header followed by the data fork and then the resource fork, each padded
// to a 128-byte boundary.
type MacBinary struct{}

const macBinaryHeader = 128

func (MacBinary) Fork(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoFork
		}
		return nil, errors.Wrap(err, "fork: read macbinary")
	}
	return macBinaryFork(data)
}

func macBinaryFork(data []byte) ([]byte, error) {
	if len(data) < macBinaryHeader {
		return nil, ErrNoFork
	}
	// Version, zero-fill and name-length bytes double as a format check;
	// MacBinary has no magic number.
	nameLen := int(data[1])
	if data[0] != 0 || data[74] != 0 || nameLen < 1 || nameLen > 63 {
		return nil, ErrNoFork
	}
	dataLen := binary.BigEndian.Uint32(data[83:])
	rsrcLen := binary.BigEndian.Uint32(data[87:])
	if rsrcLen == 0 {
		return nil, ErrNoFork
	}
	off := int64(macBinaryHeader) + pad128(int64(dataLen))
	if off+int64(rsrcLen) > int64(len(data)) {
		return nil, ErrNoFork
	}
	return data[off : off+int64(rsrcLen)], nil
}

func pad128(n int64) int64 {
	return (n + 127) &^ 127
}

// Sidecar reads a raw resource fork dumped next to the entry as
// "name.rsrc", a convention used when archives are copied off Mac media
// by hand.
type Sidecar struct{}

func (Sidecar) Fork(path string) ([]byte, error) {
	data, err := os.ReadFile(path + ".rsrc")
	if err != nil {
		return nil, ErrNoFork
	}
	if len(data) == 0 {
		return nil, ErrNoFork
	}
	return data, nil
}
