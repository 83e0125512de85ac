// Package config defines EmbedConfig, the immutable set of options that
// parameterize one codec instance, and its validation rules.
package config

import (
	"fmt"

	"github.com/s739/s739/internal/codecerr"
)

// EmbedConfig parameterizes a single encode or decode operation. It is
// immutable once a codec is constructed from it.
type EmbedConfig struct {
	// Key seeds the stepper's CSPRNG. The empty string (no key) is hashed
	// into a seed the same way as any other key.
	Key string
	// Depth is the bit offset within a sample at which embedding starts, in 0..=7.
	Depth int
	// Bits is the number of contiguous bits embedded per sample, in 1..=8.
	Bits int
	// JPEGComponent, when non-nil, restricts JPEG traversal to a single
	// color component.
	JPEGComponent *int
	// Selective enables JPEG-only content-sensitive coefficient skipping.
	Selective bool
	// MaxStep, when non-nil, overrides the capacity-derived stride.
	MaxStep *int
}

// Default returns the default options: depth 0, bits 1, everything else
// unset.
func Default() EmbedConfig {
	return EmbedConfig{Depth: 0, Bits: 1}
}

// Validate enforces the config-level rules that hold regardless of carrier
// format: bits in 1..=8, depth in 0..=7, depth + bits not exceeding the 8-bit
// window a sample exposes, and max_step, when set, at least 1.
func (c EmbedConfig) Validate() error {
	if c.Bits < 1 || c.Bits > 8 {
		return &codecerr.ParametersError{Reason: fmt.Sprintf("bits must be in 1..=8, got %d", c.Bits)}
	}
	if c.Depth < 0 || c.Depth > 7 {
		return &codecerr.ParametersError{Reason: fmt.Sprintf("depth must be in 0..=7, got %d", c.Depth)}
	}
	if c.Depth+c.Bits > 8 {
		return &codecerr.ParametersError{Reason: fmt.Sprintf("depth+bits > 8: %d+%d", c.Depth, c.Bits)}
	}
	if c.MaxStep != nil && *c.MaxStep < 1 {
		return &codecerr.ParametersError{Reason: fmt.Sprintf("max_step must be >= 1, got %d", *c.MaxStep)}
	}
	return nil
}
