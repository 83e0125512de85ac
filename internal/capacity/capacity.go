// Package capacity implements the stride planner shared by encode and
// decode: given a sample source's total count, the bits packed per sample,
// and a payload length, it decides how many samples separate successive
// payload writes.
package capacity

import (
	"github.com/s739/s739/internal/codecerr"
)

// headerSamples is the fixed-size length header: 32 bits, one per sample,
// regardless of bits-per-sample.
const headerSamples = 32

// Mode selects which sentinel a capacity overrun surfaces as: the same
// arithmetic means "the payload doesn't fit" at encode time and "this
// carrier's header disagrees with its own size" at decode time.
type Mode int

const (
	Encode Mode = iota
	Decode
)

// Plan computes the stride at which payload bits are distributed across the
// samples remaining after the length header, given a payload of
// payloadBytes. maxStep, when non-nil, overrides the derived stride but is
// still checked against capacity.
func Plan(mode Mode, totalSamples, bits, payloadBytes int, maxStep *int) (stride int, err error) {
	if payloadBytes <= 0 {
		return 0, &codecerr.ParametersError{Reason: "payload must be non-empty"}
	}

	remaining := totalSamples - headerSamples
	if remaining < 0 {
		remaining = 0
	}
	payloadBits := payloadBytes * 8
	capacityBits := remaining * bits

	if payloadBits > capacityBits {
		sentinel := codecerr.ErrTooMuchData
		if mode == Decode {
			sentinel = codecerr.ErrInvalidDataSize
		}
		return 0, &codecerr.CapacityError{Sentinel: sentinel, PayloadBits: payloadBits, CapacityBits: capacityBits}
	}

	samplesNeeded := ceilDiv(payloadBits, bits)

	if maxStep != nil {
		s := *maxStep
		if s*samplesNeeded >= remaining {
			return 0, &codecerr.StepError{MaxStep: s, Capacity: remaining}
		}
		return s, nil
	}

	s := remaining / samplesNeeded
	if s == 0 {
		return 0, &codecerr.CapacityError{Sentinel: codecerr.ErrInvalidDataSize, PayloadBits: payloadBits, CapacityBits: capacityBits}
	}
	return s, nil
}

// DeriveLength recovers a payload length from total capacity alone, for the
// decode path's max_step-override branch: there, the recovered header value
// is not trusted, and the data length is instead taken to be whatever fits
// at the user-supplied stride.
func DeriveLength(totalSamples, maxStep int) int {
	return (totalSamples / maxStep) / 8
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
