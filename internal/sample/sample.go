// Package sample defines the contract shared by the PNG and JPEG sample
// sources: a lazy, single-pass, ordered sequence of mutable integer samples.
// The two concrete sources have incompatible lifecycles (the JPEG source
// owns a decompression context that must be torn down exactly once) and are
// deliberately never merged into one concrete type — only this interface.
package sample

// Sample is a single mutable integer sample: a PNG channel byte or a JPEG
// quantized DCT coefficient. Implementations hold a reference back into the
// source's own storage, so SetValue is visible to the source's later
// re-serialization step.
type Sample interface {
	// Value returns the sample's current integer value.
	Value() int32
	// SetValue overwrites the sample's integer value.
	SetValue(int32)
}

// Source is a lazy, ordered, single-pass sequence of samples.
type Source interface {
	// Len returns the source's total capacity in samples.
	Len() int
	// DomainBits returns the bit width of the sample's domain: 8 for PNG
	// channel bytes, 16 for JPEG coefficients (only the low 8 bits of a
	// coefficient participate in embedding).
	DomainBits() int
	// Skip advances the cursor past n samples without exposing them. It
	// reports false if the source is exhausted before n samples are
	// skipped, in which case the cursor lands at the end of the source.
	Skip(n int) bool
	// Next returns the next sample in source order and advances the
	// cursor past it. It reports false once the source is exhausted.
	Next() (Sample, bool)
}
