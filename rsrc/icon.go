package rsrc

import (
	"errors"
	"image"
)

// All records decoded here describe a 32x32 icon.
const (
	IconSide = 32

	// ICNSize is the length of an ICN# record: a 1-bit icon bitmap
	// followed by a 1-bit transparency mask, 128 bytes each.
	ICNSize = 256

	// ICL8Size is the length of an icl8 record, one palette index per
	// pixel, row-major.
	ICL8Size = 1024

	// L8MKSize is the length of an l8mk record, one alpha byte per
	// pixel, row-major.
	L8MKSize = 1024

	maskOffset = 128 // mask half of an ICN# record
	maskStride = 4   // bytes per row of a 1-bit mask
)

var (
	ErrTooShort = errors.New("rsrc: record too short")
	ErrCorrupt  = errors.New("rsrc: container corrupt")
)

// A MaskPlane holds one alpha byte per pixel of a 32x32 icon.
type MaskPlane [IconSide * IconSide]uint8

// DecodeICNMask unpacks the transparency mask from an ICN# record into an
// alpha plane. The icon bitmap in the first half of the record is ignored.
// Bits are consumed most significant first, so bit 7 of each row's first
// byte is the leftmost pixel.
func DecodeICNMask(data []byte) (*MaskPlane, error) {
	if len(data) < ICNSize {
		return nil, ErrTooShort
	}
	mask := data[maskOffset:ICNSize]
	m := new(MaskPlane)
	for y := 0; y < IconSide; y++ {
		for x := 0; x < IconSide; x++ {
			if mask[y*maskStride+x/8]&(1<<uint(7-x%8)) != 0 {
				m[y*IconSide+x] = 0xFF
			}
		}
	}
	return m, nil
}

// DecodeL8Mask reads an l8mk record. The record already stores one alpha
// byte per pixel, so no unpacking is needed.
func DecodeL8Mask(data []byte) (*MaskPlane, error) {
	if len(data) < L8MKSize {
		return nil, ErrTooShort
	}
	m := new(MaskPlane)
	copy(m[:], data[:L8MKSize])
	return m, nil
}

// DecodeICL8 decodes an icl8 record against the system palette. With a
// mask it returns a 32x32 NRGBA image whose alpha comes from the plane;
// without one it returns an opaque 32x32 RGBA image.
func DecodeICL8(data []byte, mask *MaskPlane) (image.Image, error) {
	if len(data) < ICL8Size {
		return nil, ErrTooShort
	}
	r := image.Rect(0, 0, IconSide, IconSide)
	if mask != nil {
		m := image.NewNRGBA(r)
		for i := 0; i < ICL8Size; i++ {
			c := systemPalette[data[i]]
			m.Pix[i*4+0] = c.R
			m.Pix[i*4+1] = c.G
			m.Pix[i*4+2] = c.B
			m.Pix[i*4+3] = mask[i]
		}
		return m, nil
	}
	m := image.NewRGBA(r)
	for i := 0; i < ICL8Size; i++ {
		c := systemPalette[data[i]]
		m.Pix[i*4+0] = c.R
		m.Pix[i*4+1] = c.G
		m.Pix[i*4+2] = c.B
		m.Pix[i*4+3] = 0xFF
	}
	return m, nil
}
