package rsrc

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Record and container element type codes.
const (
	TypeICNS = "icns"
	TypeICL8 = "icl8"
	TypeICN  = "ICN#"
	TypeL8MK = "l8mk"
)

// PolicyFirstTypeWins keeps the first payload seen when a container
// repeats an element type. Archives in the wild do not repeat the types
// consumed here; the constant names the heuristic so it can be changed
// without touching the walk.
const PolicyFirstTypeWins = true

// A Container maps icns element type codes to their payloads.
type Container map[string][]byte

// elemHeader is the 8 bytes in front of every container element: a 4-byte
// type code and a big-endian length that includes the header itself.
const elemHeader = 8

// ParseContainer walks the elements of an icns container. The optional
// file header (the "icns" magic and a total length) is skipped when
// present. The walk stops when the remaining bytes cannot hold another
// element header, or when a declared length is shorter than the header or
// longer than the remaining buffer; in the latter case the elements parsed
// so far are returned together with ErrCorrupt.
func ParseContainer(data []byte) (Container, error) {
	elems := Container{}
	pos := 0
	if len(data) >= elemHeader && string(data[:4]) == TypeICNS {
		pos = elemHeader
	}
	for pos+elemHeader <= len(data) {
		typ := string(data[pos : pos+4])
		n := int(binary.BigEndian.Uint32(data[pos+4 : pos+elemHeader]))
		if n < elemHeader || n > len(data)-pos {
			return elems, errors.Wrapf(ErrCorrupt,
				"element %q declares %d of %d remaining bytes", typ, n, len(data)-pos)
		}
		if _, dup := elems[typ]; dup && PolicyFirstTypeWins {
			pos += n
			continue
		}
		elems[typ] = data[pos+elemHeader : pos+n]
		pos += n
	}
	return elems, nil
}
