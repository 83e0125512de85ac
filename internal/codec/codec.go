// Package codec implements the encode and decode algorithms: format
// sniffing, header framing, and the keyed stride walk that places payload
// bits into (or recovers them from) a carrier's samples.
package codec

import (
	"bytes"

	"github.com/s739/s739/internal/bitqueue"
	"github.com/s739/s739/internal/capacity"
	"github.com/s739/s739/internal/codecerr"
	"github.com/s739/s739/internal/config"
	"github.com/s739/s739/internal/imageopts"
	"github.com/s739/s739/internal/jpegsample"
	"github.com/s739/s739/internal/pngsample"
	"github.com/s739/s739/internal/sample"
	"github.com/s739/s739/internal/stepper"
)

// headerBits is the fixed-size little-endian length header, written one bit
// per sample at stride 1 regardless of the configured bits-per-sample.
const headerBits = 32

// Format names a sniffed carrier format.
type Format int

const (
	FormatPNG Format = iota
	FormatJPEG
)

var (
	pngMagic  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
)

// Sniff identifies a carrier's format from its magic bytes rather than a
// filename, matching the external interface's "output is byte-identical,
// format selected by sniffing" contract.
func Sniff(data []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(data, pngMagic):
		return FormatPNG, nil
	case bytes.HasPrefix(data, jpegMagic):
		return FormatJPEG, nil
	default:
		return 0, &codecerr.FormatError{Found: "neither a png nor a jpeg signature"}
	}
}

// Options bundles the carrier re-serialization knobs that only matter on
// encode; decode never writes an image back out.
type Options struct {
	PNG  imageopts.PNGOptions
	JPEG imageopts.JPEGOptions
}

// carrier pairs a sample.Source with the format-specific logic needed to
// turn its (possibly modified) samples back into carrier bytes. Close must
// be called on every exit path, not just the happy one: jpegCarrier owns a
// cgo decompression context that a finalizer alone is not enough to retire
// promptly (see internal/jpegsample/doc.go).
type carrier interface {
	sample.Source
	save(Options) ([]byte, error)
	Close()
}

type pngCarrier struct{ src *pngsample.Source }

func (c pngCarrier) Len() int                    { return c.src.Len() }
func (c pngCarrier) DomainBits() int             { return c.src.DomainBits() }
func (c pngCarrier) Skip(n int) bool             { return c.src.Skip(n) }
func (c pngCarrier) Next() (sample.Sample, bool) { return c.src.Next() }
func (c pngCarrier) Close()                      {}
func (c pngCarrier) save(opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.src.Save(&buf, opts.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type jpegCarrier struct{ src *jpegsample.Source }

func (c jpegCarrier) Len() int                    { return c.src.Len() }
func (c jpegCarrier) DomainBits() int             { return c.src.DomainBits() }
func (c jpegCarrier) Skip(n int) bool             { return c.src.Skip(n) }
func (c jpegCarrier) Next() (sample.Sample, bool) { return c.src.Next() }
func (c jpegCarrier) Close()                      { c.src.Close() }
func (c jpegCarrier) save(opts Options) ([]byte, error) {
	// Save closes the source itself once it reaches the write step (see
	// jpegsample.Source.Save); on its earlier error returns the source is
	// still open and the deferred Close in Encode tears it down.
	return c.src.Save(opts.JPEG)
}

func openCarrier(data []byte, format Format, cfg config.EmbedConfig) (carrier, error) {
	switch format {
	case FormatPNG:
		src, err := pngsample.Open(data)
		if err != nil {
			return nil, err
		}
		return pngCarrier{src}, nil
	case FormatJPEG:
		src, err := jpegsample.Open(data, cfg.JPEGComponent, cfg.Selective, cfg.Depth, cfg.Bits)
		if err != nil {
			return nil, err
		}
		return jpegCarrier{src}, nil
	default:
		return nil, &codecerr.FormatError{Found: "unknown format"}
	}
}

// Encode embeds payload into carrierBytes (a raw PNG or JPEG file) per cfg,
// and returns the re-serialized carrier.
func Encode(carrierBytes, payload []byte, cfg config.EmbedConfig, opts Options) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, &codecerr.ParametersError{Reason: "payload must be non-empty"}
	}

	format, err := Sniff(carrierBytes)
	if err != nil {
		return nil, err
	}
	src, err := openCarrier(carrierBytes, format, cfg)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	step, err := stepper.New(cfg.Key)
	if err != nil {
		return nil, err
	}

	stride, err := capacity.Plan(capacity.Encode, src.Len(), cfg.Bits, len(payload), cfg.MaxStep)
	if err != nil {
		return nil, err
	}

	header := bitqueue.NewEmpty(4)
	header.PushUint32LE(uint32(len(payload)))
	if err := writeHeader(src, header, cfg.Depth, cfg.Bits); err != nil {
		return nil, err
	}

	body := bitqueue.FromBytes(payload)
	if err := writeBody(src, step, body, stride, cfg.Depth, cfg.Bits); err != nil {
		return nil, err
	}

	return src.save(opts)
}

// Decode extracts a payload previously embedded by Encode with the same
// key and options (tried against the wrong key, it recovers garbage rather
// than failing). When cfg.MaxStep is set, the length header is ignored and
// the returned slice holds every byte that fits at that stride, so it can be
// longer than the embedded payload.
func Decode(carrierBytes []byte, cfg config.EmbedConfig) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	format, err := Sniff(carrierBytes)
	if err != nil {
		return nil, err
	}
	src, err := openCarrier(carrierBytes, format, cfg)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	step, err := stepper.New(cfg.Key)
	if err != nil {
		return nil, err
	}

	header, err := readHeader(src, cfg.Depth)
	if err != nil {
		return nil, err
	}

	var payloadLen, stride int
	if cfg.MaxStep == nil {
		stride, err = capacity.Plan(capacity.Decode, src.Len(), cfg.Bits, int(header), nil)
		if err != nil {
			return nil, err
		}
		payloadLen = int(header)
	} else {
		// The max_step override bypasses the recovered header entirely:
		// the data length is whatever fits at the user-supplied stride.
		payloadLen = capacity.DeriveLength(src.Len(), *cfg.MaxStep)
		if payloadLen <= 0 {
			return nil, &codecerr.CapacityError{Sentinel: codecerr.ErrInvalidDataSize}
		}
		stride = *cfg.MaxStep
	}

	out := bitqueue.NewEmpty(payloadLen)
	if err := readBody(src, step, out, stride, cfg.Depth, cfg.Bits); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// writeHeader writes the 32 header bits at stride 1: each bit lands in a
// fresh sample with the whole bits-wide embedding window cleared first, but
// only the single bit at position depth set.
func writeHeader(src sample.Source, header *bitqueue.BitQueue, depth, bits int) error {
	windowMask := int32(((1 << uint(bits)) - 1) << uint(depth))
	for i := 0; i < headerBits; i++ {
		bit, _ := header.PopBit()
		s, ok := src.Next()
		if !ok {
			return &codecerr.TruncationError{SamplesConsumed: i, BitsRemaining: headerBits - i}
		}
		v := s.Value()
		v &^= windowMask
		v |= int32(bit) << uint(depth)
		s.SetValue(v)
	}
	return nil
}

// readHeader mirrors writeHeader: 32 single-bit reads at stride 1,
// reassembled as a little-endian uint32.
func readHeader(src sample.Source, depth int) (uint32, error) {
	q := bitqueue.NewEmpty(4)
	for i := 0; i < headerBits; i++ {
		s, ok := src.Next()
		if !ok {
			return 0, &codecerr.TruncationError{SamplesConsumed: i, BitsRemaining: headerBits - i}
		}
		bit := byte((s.Value() >> uint(depth)) & 1)
		q.PushBit(bit)
	}
	v, _ := q.PopUint32LE()
	return v, nil
}

// writeBody distributes payload's bits at the planner's stride, packing
// `bits` contiguous payload bits into each visited sample's embedding
// window. Each window bit i holds the i-th payload bit popped for that
// sample, read back by readBody in the same order — the two together form
// the pack/unpack convention's round-trip (see DESIGN.md for why this
// implementation departs from the literal bit-reversal spec.md sketches,
// as permitted by its own "any convention that round-trips" escape hatch).
func writeBody(src sample.Source, step *stepper.Stepper, payload *bitqueue.BitQueue, stride, depth, bits int) error {
	windowMask := int32(((1 << uint(bits)) - 1) << uint(depth))
	total := payload.Cap()
	written := 0
	for written < total {
		k := step.RandStep(stride)
		if !src.Skip(k) {
			return &codecerr.TruncationError{SamplesConsumed: written / bits, BitsRemaining: total - written}
		}
		s, ok := src.Next()
		if !ok {
			return &codecerr.TruncationError{SamplesConsumed: written / bits, BitsRemaining: total - written}
		}
		var field int32
		for i := 0; i < bits; i++ {
			bit, _ := payload.PopBit()
			field |= int32(bit) << uint(i)
		}
		v := s.Value()
		v &^= windowMask
		v |= field << uint(depth)
		s.SetValue(v)
		written += bits
	}
	return nil
}

// readBody mirrors writeBody: at each visited sample, extract the
// bits-wide window and push its bits into out in the same bit order
// writeBody packed them.
func readBody(src sample.Source, step *stepper.Stepper, out *bitqueue.BitQueue, stride, depth, bits int) error {
	fieldMask := int32((1 << uint(bits)) - 1)
	total := out.Cap()
	written := 0
	for written < total {
		k := step.RandStep(stride)
		if !src.Skip(k) {
			return &codecerr.TruncationError{SamplesConsumed: written / bits, BitsRemaining: total - written}
		}
		s, ok := src.Next()
		if !ok {
			return &codecerr.TruncationError{SamplesConsumed: written / bits, BitsRemaining: total - written}
		}
		field := (s.Value() >> uint(depth)) & fieldMask
		for i := 0; i < bits && written < total; i++ {
			bit := byte((field >> uint(i)) & 1)
			out.PushBit(bit)
			written++
		}
	}
	return nil
}
