// Package stepper derives a deterministic, keyed CSPRNG used to space
// payload-bearing samples during encode and decode. Encoder and decoder
// constructed with the same key draw the identical sequence of steps,
// provided they call RandStep the same number of times in the same order.
package stepper

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20"
)

// Stepper wraps a ChaCha20 keystream seeded from a hashed key.
type Stepper struct {
	cipher *chacha20.Cipher
}

// New derives a 32-byte seed from key (the empty string when no key was
// given) via BLAKE2b-256 and seeds a ChaCha20 cipher with it. The nonce is
// fixed at all-zeros: the seed alone determines the entire keystream, which
// is what makes two Steppers built from the same key produce identical
// sequences.
func New(key string) (*Stepper, error) {
	seed := blake2b.Sum256([]byte(key))
	cipher, err := chacha20.NewUnauthenticatedCipher(seed[:], make([]byte, chacha20.NonceSize))
	if err != nil {
		return nil, err
	}
	return &Stepper{cipher: cipher}, nil
}

// RandStep draws a uniform value in [0, maxStep). It returns 0 without
// consuming keystream when maxStep <= 1, so that callers can call it
// unconditionally and still keep encoder/decoder keystream consumption
// aligned across the whole walk.
func (s *Stepper) RandStep(maxStep int) int {
	if maxStep <= 1 {
		return 0
	}
	limit := uint64(maxStep)
	// Rejection sampling over the keystream avoids the modulo bias a plain
	// `% maxStep` would introduce for limits that don't divide 2^32 evenly.
	bound := (uint64(1) << 32) - ((uint64(1) << 32) % limit)
	for {
		v := uint64(s.nextUint32())
		if v < bound {
			return int(v % limit)
		}
	}
}

func (s *Stepper) nextUint32() uint32 {
	var buf [4]byte
	s.cipher.XORKeyStream(buf[:], buf[:])
	return binary.LittleEndian.Uint32(buf[:])
}
