package codec_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s739/s739/internal/codec"
	"github.com/s739/s739/internal/codecerr"
	"github.com/s739/s739/internal/config"
)

func randomPNG(t *testing.T, w, h int, seed int64) []byte {
	t.Helper()
	r := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{
				R: uint8(r.Intn(256)), G: uint8(r.Intn(256)), B: uint8(r.Intn(256)), A: 255,
			})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func randomJPEG(t *testing.T, w, h int, seed int64) []byte {
	t.Helper()
	r := rand.New(rand.NewSource(seed))
	img := image.NewYCbCr(image.Rect(0, 0, w, h), image.YCbCrSubsampleRatio420)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			yy, cb, cr := color.RGBToYCbCr(uint8(r.Intn(256)), uint8(r.Intn(256)), uint8(r.Intn(256)))
			img.Y[img.YOffset(x, y)] = yy
			img.Cb[img.COffset(x, y)] = cb
			img.Cr[img.COffset(x, y)] = cr
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}))
	return buf.Bytes()
}

func randomBytes(n int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	out := make([]byte, n)
	r.Read(out)
	return out
}

// PNG-small: 128x128 carrier, 128-byte payload, default config.
func TestRoundTripPNGSmall(t *testing.T) {
	carrier := randomPNG(t, 128, 128, 1)
	payload := randomBytes(128, 2)
	cfg := config.Default()

	out, err := codec.Encode(carrier, payload, cfg, codec.Options{})
	require.NoError(t, err)

	got, err := codec.Decode(out, cfg)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

// PNG-lsbs-8: payload sized exactly to the bits=8 capacity boundary.
func TestRoundTripPNGFullCapacityAtEightBits(t *testing.T) {
	carrier := randomPNG(t, 128, 128, 3)
	total := 128 * 128 * 4 // NRGBA canonicalization: 4 channels, not 3 (see DESIGN.md)
	payloadLen := total - 32
	payload := randomBytes(payloadLen, 4)
	cfg := config.EmbedConfig{Depth: 0, Bits: 8}

	out, err := codec.Encode(carrier, payload, cfg, codec.Options{})
	require.NoError(t, err)

	got, err := codec.Decode(out, cfg)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

// PNG-bad-params: depth+bits > 8 fails with InvalidParameters regardless of
// carrier or payload.
func TestEncodeRejectsIllegalDepthBits(t *testing.T) {
	carrier := randomPNG(t, 16, 16, 5)
	payload := []byte("x")
	cfg := config.EmbedConfig{Depth: 2, Bits: 7}

	_, err := codec.Encode(carrier, payload, cfg, codec.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, codecerr.ErrInvalidParameters)
}

func TestEncodeRejectsPayloadTooLarge(t *testing.T) {
	carrier := randomPNG(t, 8, 8, 6)
	payload := randomBytes(8*8*4, 7) // far larger than an 8x8 carrier can hold
	cfg := config.Default()

	_, err := codec.Encode(carrier, payload, cfg, codec.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, codecerr.ErrTooMuchData)
}

// Key sensitivity: decoding with the wrong key recovers something other
// than the original payload. With MaxStep set, Decode ignores the length
// header and returns every byte that fits at that stride, so the payload is
// compared against the prefix of the same length.
func TestDecodeWithWrongKeyDiverges(t *testing.T) {
	carrier := randomPNG(t, 64, 64, 8)
	payload := randomBytes(64, 9)
	maxStep := 3
	encodeCfg := config.EmbedConfig{Depth: 0, Bits: 1, Key: "right key", MaxStep: &maxStep}

	out, err := codec.Encode(carrier, payload, encodeCfg, codec.Options{})
	require.NoError(t, err)

	decodeCfg := encodeCfg
	decodeCfg.Key = "wrong key"
	got, err := codec.Decode(out, decodeCfg)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(got), len(payload))
	assert.NotEqual(t, payload, got[:len(payload)])
}

func TestSniffRejectsUnknownFormat(t *testing.T) {
	_, err := codec.Sniff([]byte("not an image"))
	require.Error(t, err)
	assert.ErrorIs(t, err, codecerr.ErrUnsupportedFormat)
}

// JPEG-key: a JPEG carrier round-trips with the right key and diverges with
// the wrong one, same as the PNG key-sensitivity scenario. With MaxStep set,
// Decode returns every byte that fits at that stride; the payload is its prefix.
func TestJPEGRoundTripAndKeySensitivity(t *testing.T) {
	carrier := randomJPEG(t, 64, 64, 11)
	payload := randomBytes(4, 12)
	maxStep := 4
	cfg := config.EmbedConfig{Depth: 0, Bits: 1, Key: "right key", MaxStep: &maxStep}

	out, err := codec.Encode(carrier, payload, cfg, codec.Options{})
	require.NoError(t, err)

	got, err := codec.Decode(out, cfg)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(got), len(payload))
	assert.Equal(t, payload, got[:len(payload)])

	wrongCfg := cfg
	wrongCfg.Key = "wrong key"
	got, err = codec.Decode(out, wrongCfg)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(got), len(payload))
	assert.NotEqual(t, payload, got[:len(payload)])
}

// JPEG-component: restricting embedding to a single color component still
// round-trips, using only that component's coefficients on both ends. With
// MaxStep set, Decode returns every byte that fits at that stride; the
// payload is its prefix.
func TestJPEGComponentRoundTrip(t *testing.T) {
	carrier := randomJPEG(t, 64, 64, 13)
	payload := randomBytes(4, 14)
	comp := 0
	maxStep := 4
	cfg := config.EmbedConfig{Depth: 0, Bits: 1, Key: "component key", JPEGComponent: &comp, MaxStep: &maxStep}

	out, err := codec.Encode(carrier, payload, cfg, codec.Options{})
	require.NoError(t, err)

	got, err := codec.Decode(out, cfg)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(got), len(payload))
	assert.Equal(t, payload, got[:len(payload)])
}

// JPEG-selective: content-sensitive coefficient skipping round-trips, which
// also exercises the Source's selective skip predicate end-to-end (not just
// in isolation). With MaxStep set, Decode returns every byte that fits at
// that stride; the payload is its prefix.
func TestJPEGSelectiveRoundTrip(t *testing.T) {
	carrier := randomJPEG(t, 96, 96, 15)
	payload := randomBytes(4, 16)
	maxStep := 4
	cfg := config.EmbedConfig{Depth: 0, Bits: 1, Key: "selective key", Selective: true, MaxStep: &maxStep}

	out, err := codec.Encode(carrier, payload, cfg, codec.Options{})
	require.NoError(t, err)

	got, err := codec.Decode(out, cfg)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(got), len(payload))
	assert.Equal(t, payload, got[:len(payload)])
}

// Close must run even when Encode fails after openCarrier succeeds, so a
// repeated failing JPEG encode never accumulates leaked decompression
// contexts (previously only Save's happy path or the non-deterministic
// finalizer ever called jpegsample.Source.Close).
func TestJPEGEncodeFailureAfterOpenStillCloses(t *testing.T) {
	carrier := randomJPEG(t, 16, 16, 17)
	payload := randomBytes(16*16*8, 18) // far larger than a 16x16 carrier can hold
	cfg := config.Default()

	for i := 0; i < 50; i++ {
		_, err := codec.Encode(carrier, payload, cfg, codec.Options{})
		require.Error(t, err)
		assert.ErrorIs(t, err, codecerr.ErrTooMuchData)
	}
}
