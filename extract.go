// Package macicons extracts classic Mac OS icons from the resource forks
// of a directory tree and writes them out as 32x32 PNG files.
//
// A walk visits each top-level collection directory twice: once for the
// per-folder "Icon\r" marker files Finder creates, once for plain files
// that carry their own resource fork. Each candidate's fork is decoded
// into an RGB or RGBA raster and written under a collision-free
// "{collection}--{icon}.png" name.
package macicons

import (
	"image"

	"github.com/amaezey/icon-archaeology/rsrc"
	"github.com/pkg/errors"
)

var (
	// ErrNoStream reports an empty resource stream. Common and benign:
	// plenty of filesystem artifacts carry a zero-length fork.
	ErrNoStream = errors.New("macicons: no resource data")

	// ErrNoIconData reports a fork that parsed but held no decodable
	// icon record.
	ErrNoIconData = errors.New("macicons: no decodable icon data")
)

// PolicyFirstRecordWins stops at the first resource id that decodes.
// Forks holding several icl8 ids are rare and usually carry the same
// bitmap under each; a stricter selector could rank ids instead.
const PolicyFirstRecordWins = true

// An Extractor decodes the best available 32x32 icon from one item's
// resource fork. The zero value is ready to use.
type Extractor struct{}

// Decode resolves a raw resource fork to an icon raster. Direct icl8
// records are tried first, each paired with the same-id ICN# mask; icns
// containers come second. The first successful decode wins.
func (Extractor) Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrNoStream
	}
	f, err := rsrc.Read(data)
	if err != nil {
		return nil, err
	}
	if m := decodeDirect(f); m != nil {
		return m, nil
	}
	if m := decodeContainers(f); m != nil {
		return m, nil
	}
	return nil, ErrNoIconData
}

// decodeDirect pairs each icl8 record with a same-id ICN# mask and
// decodes the first pair that works.
func decodeDirect(f *rsrc.File) image.Image {
	masks := make(map[int16]*rsrc.MaskPlane)
	for _, r := range f.Resources(rsrc.TypeICN) {
		if _, ok := masks[r.ID]; ok {
			continue
		}
		if m, err := rsrc.DecodeICNMask(r.Data); err == nil {
			masks[r.ID] = m
		}
	}
	var last image.Image
	for _, r := range f.Resources(rsrc.TypeICL8) {
		m, err := rsrc.DecodeICL8(r.Data, masks[r.ID])
		if err != nil {
			continue
		}
		if PolicyFirstRecordWins {
			return m
		}
		last = m
	}
	return last
}

// decodeContainers walks each icns record, requiring an icl8 element and
// preferring the 8-bit l8mk mask over the 1-bit ICN# mask. A corrupt
// container still contributes whatever elements parsed before the damage.
func decodeContainers(f *rsrc.File) image.Image {
	for _, r := range f.Resources(rsrc.TypeICNS) {
		elems, _ := rsrc.ParseContainer(r.Data)
		raster, ok := elems[rsrc.TypeICL8]
		if !ok {
			continue
		}
		var mask *rsrc.MaskPlane
		if d, ok := elems[rsrc.TypeL8MK]; ok {
			mask, _ = rsrc.DecodeL8Mask(d)
		}
		if mask == nil {
			if d, ok := elems[rsrc.TypeICN]; ok {
				mask, _ = rsrc.DecodeICNMask(d)
			}
		}
		m, err := rsrc.DecodeICL8(raster, mask)
		if err != nil {
			continue
		}
		return m
	}
	return nil
}
