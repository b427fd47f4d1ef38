// Package rsrc reads classic Mac OS resource forks and decodes the icon
// record types found in them: icl8 color rasters, ICN# monochrome+mask
// records, l8mk alpha masks, and icns containers bundling the three.
//
// Only the type codes, ids and payloads of a fork are surfaced; resource
// names, attributes and the rest of the fork map are ignored.
package rsrc

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

var ErrNotFork = errors.New("rsrc: not a resource fork")

// A Resource is one typed, identified record from a resource fork.
type Resource struct {
	Type string
	ID   int16
	Data []byte
}

// A File indexes the records of a parsed resource fork by type code.
type File struct {
	types  []string
	byType map[string][]Resource
}

// forkHeader sits at offset 0. All fields are big-endian, offsets are
// relative to the start of the fork.
type forkHeader struct {
	DataOff uint32
	MapOff  uint32
	DataLen uint32
	MapLen  uint32
}

type mapHeader struct {
	Reserved    [16]byte // copy of the fork header
	NextMap     uint32
	FileRef     uint16
	Attrs       uint16
	TypeListOff uint16 // from the start of the map
	NameListOff uint16
}

type typeEntry struct {
	Code    [4]byte
	CountM1 uint16 // resources of this type, minus one
	RefOff  uint16 // from the start of the type list
}

type refEntry struct {
	ID      int16
	NameOff int16
	Packed  uint32 // attribute byte followed by a 24-bit data offset
	Handle  uint32
}

func (r refEntry) dataOff() uint32 { return r.Packed & 0xFFFFFF }

// Read parses a resource fork held in memory. Records whose data blocks
// fall outside the fork are dropped; a fork whose header or map cannot be
// read at all yields ErrNotFork.
func Read(data []byte) (*File, error) {
	var hdr forkHeader
	if err := binary.Read(bytes.NewReader(data), binary.BigEndian, &hdr); err != nil {
		return nil, ErrNotFork
	}
	if int64(hdr.DataOff)+int64(hdr.DataLen) > int64(len(data)) ||
		int64(hdr.MapOff)+int64(hdr.MapLen) > int64(len(data)) ||
		hdr.MapOff < hdr.DataOff {
		return nil, ErrNotFork
	}
	resMap := data[hdr.MapOff : hdr.MapOff+hdr.MapLen]
	resData := data[hdr.DataOff : hdr.DataOff+hdr.DataLen]

	var mh mapHeader
	if err := binary.Read(bytes.NewReader(resMap), binary.BigEndian, &mh); err != nil {
		return nil, ErrNotFork
	}
	if int(mh.TypeListOff) >= len(resMap) {
		return nil, ErrNotFork
	}
	typeList := resMap[mh.TypeListOff:]

	var countM1 uint16
	if err := binary.Read(bytes.NewReader(typeList), binary.BigEndian, &countM1); err != nil {
		return nil, ErrNotFork
	}
	n := int(int16(countM1)) + 1

	f := &File{byType: make(map[string][]Resource, n)}
	entries := bytes.NewReader(typeList)
	entries.Seek(2, io.SeekStart)
	for i := 0; i < n; i++ {
		var te typeEntry
		if err := binary.Read(entries, binary.BigEndian, &te); err != nil {
			return nil, errors.Wrap(ErrNotFork, "type list truncated")
		}
		code := string(te.Code[:])
		refs := bytes.NewReader(typeList)
		if _, err := refs.Seek(int64(te.RefOff), io.SeekStart); err != nil {
			continue
		}
		for j := 0; j <= int(te.CountM1); j++ {
			var re refEntry
			if err := binary.Read(refs, binary.BigEndian, &re); err != nil {
				break
			}
			block, ok := dataBlock(resData, re.dataOff())
			if !ok {
				continue
			}
			if _, seen := f.byType[code]; !seen {
				f.types = append(f.types, code)
			}
			f.byType[code] = append(f.byType[code], Resource{code, re.ID, block})
		}
	}
	return f, nil
}

// dataBlock reads one length-prefixed data block out of the fork's data area.
func dataBlock(resData []byte, off uint32) ([]byte, bool) {
	if int64(off)+4 > int64(len(resData)) {
		return nil, false
	}
	n := binary.BigEndian.Uint32(resData[off:])
	if int64(off)+4+int64(n) > int64(len(resData)) {
		return nil, false
	}
	return resData[off+4 : off+4+n], true
}

// Types lists the type codes present in the fork, in map order.
func (f *File) Types() []string {
	return f.types
}

// Has reports whether the fork holds any records of the given type.
func (f *File) Has(code string) bool {
	return len(f.byType[code]) > 0
}

// Resources returns the records of one type, in map order.
func (f *File) Resources(code string) []Resource {
	return f.byType[code]
}
