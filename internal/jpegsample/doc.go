// Package jpegsample implements the JPEG sample source: a lazy sequence
// over the quantized DCT coefficients of a carrier image, obtained by
// binding directly to libjpeg's "read coefficients" / "write coefficients"
// API via cgo.
//
// The decompression context is exclusively owned by a Source for its
// entire lifetime and is torn down exactly once, on every exit path
// (success, error, or an unclosed Source left to the finalizer) — mirroring
// the single-owner discipline the rest of this codec's sample sources
// follow, and the RAII-by-defer idiom the cgo bindings in this codebase's
// source lineage use.
package jpegsample
