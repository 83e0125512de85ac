// Package pngsample implements the PNG sample source: a lazy sequence over
// the channel bytes of an 8-bit RGB/RGBA carrier, decoded and re-encoded
// with the standard library's image/png.
package pngsample

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"

	"github.com/s739/s739/internal/codecerr"
	"github.com/s739/s739/internal/imageopts"
	"github.com/s739/s739/internal/sample"
)

// Source iterates the channel bytes of a decoded PNG carrier, pixel-major,
// channel-minor. Go's image package has no 3-byte-per-pixel RGB type, so
// every supported carrier is canonicalized to 4-channel NRGBA on decode and
// re-serialized the same way on save (see DESIGN.md). Total capacity is
// always width*height*4.
type Source struct {
	img *image.NRGBA
	pos int
}

// Open decodes data as a PNG and canonicalizes it to NRGBA. Any color model
// other than an 8-bit truecolor (alpha or not) image fails with
// ErrUnsupportedFormat.
func Open(data []byte) (*Source, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &codecerr.IoError{Sentinel: codecerr.ErrCarrierIoError, Cause: err}
	}

	nrgba, err := toNRGBA(img)
	if err != nil {
		return nil, err
	}
	return &Source{img: nrgba}, nil
}

func toNRGBA(img image.Image) (*image.NRGBA, error) {
	switch im := img.(type) {
	case *image.NRGBA:
		return im, nil
	case *image.RGBA:
		out := image.NewNRGBA(im.Bounds())
		draw.Draw(out, out.Bounds(), im, im.Bounds().Min, draw.Src)
		return out, nil
	default:
		return nil, &codecerr.FormatError{Found: fmt.Sprintf("png color model %T, want 8-bit RGB or RGBA", img)}
	}
}

// Len returns the total sample count: width*height*4.
func (s *Source) Len() int {
	return len(s.img.Pix)
}

// DomainBits is always 8 for PNG channel bytes.
func (s *Source) DomainBits() int {
	return 8
}

// Skip advances past n samples.
func (s *Source) Skip(n int) bool {
	if s.pos+n > len(s.img.Pix) {
		s.pos = len(s.img.Pix)
		return false
	}
	s.pos += n
	return true
}

// Next returns the next channel byte and advances the cursor.
func (s *Source) Next() (sample.Sample, bool) {
	if s.pos >= len(s.img.Pix) {
		return nil, false
	}
	ref := channelRef{p: &s.img.Pix[s.pos]}
	s.pos++
	return ref, true
}

// Save re-encodes the (possibly modified) carrier as a PNG, honoring the
// requested compression level. image/png's encoder always chooses its
// per-scanline filter adaptively; it exposes no way to force a single
// filter, so opts.Filter only affects validation, not output bytes (see
// DESIGN.md).
func (s *Source) Save(w io.Writer, opts imageopts.PNGOptions) error {
	if !opts.Filter.Valid() {
		return &codecerr.ParametersError{Reason: fmt.Sprintf("unknown png filter %q", opts.Filter)}
	}
	level, err := opts.Compression.Level()
	if err != nil {
		return &codecerr.ParametersError{Reason: err.Error()}
	}
	enc := &png.Encoder{CompressionLevel: level}
	if err := enc.Encode(w, s.img); err != nil {
		return &codecerr.IoError{Sentinel: codecerr.ErrCarrierIoError, Cause: err}
	}
	return nil
}

type channelRef struct {
	p *byte
}

func (r channelRef) Value() int32     { return int32(*r.p) }
func (r channelRef) SetValue(v int32) { *r.p = byte(v) }
