// Source traversal, selective skipping, and save-back logic for the JPEG
// sample source.
package jpegsample

/*
#include <stdlib.h>
#include <jpeglib.h>
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/s739/s739/internal/codecerr"
	"github.com/s739/s739/internal/imageopts"
	"github.com/s739/s739/internal/sample"
)

// coef is one addressable DCT coefficient: a live pointer into libjpeg's own
// coefficient storage, plus its position within its 8x8 block (needed by the
// selective-skip predicate).
type coef struct {
	ptr *C.JCOEF
	idx int
}

func (c coef) Value() int32     { return int32(*c.ptr) }
func (c coef) SetValue(v int32) { *c.ptr = C.JCOEF(int16(v)) }

// Source iterates the quantized DCT coefficients of a decoded JPEG carrier,
// component-major, block-row-major, block-column-major, in-block-index-minor
// — the order libjpeg itself stores them in, so no zigzag reordering is
// needed. When selective is set, a coefficient is invisible to both
// traversal and capacity counting whenever it is the DC term, zero, or equal
// to the embedding window's sign boundary (idx==0 || value==0 ||
// value==bits<<depth); the check runs against the coefficient's current
// value at the moment it's visited, so an encoder's own earlier writes are
// never revisited or reconsidered.
type Source struct {
	srcBuf unsafe.Pointer // C-owned copy of the input bytes, kept alive for cinfo's lifetime

	errMgr     *C.s739_error_mgr
	cinfo      *C.struct_jpeg_decompress_struct
	coefArrays *C.jvirt_barray_ptr
	coefs      []coef // flattened, in traversal order, already component-filtered

	pos int

	selective bool
	depth     int
	bits      int
}

// Open decodes a JPEG's header and reads its coefficient arrays without
// running the IDCT. jpegComponent, when non-nil, restricts traversal to a
// single color component (0-indexed); an out-of-range value fails with
// ErrInvalidParameters.
func Open(data []byte, jpegComponent *int, selective bool, depth, bits int) (*Source, error) {
	errMgr := (*C.s739_error_mgr)(C.malloc(C.sizeof_s739_error_mgr))
	C.s739_init_error_mgr(errMgr)

	cinfo := C.s739_decompress_create(errMgr)
	if cinfo == nil {
		C.free(unsafe.Pointer(errMgr))
		return nil, &codecerr.IoError{Sentinel: codecerr.ErrCarrierIoError, Cause: fmt.Errorf("jpeg: %s", goMessage(errMgr))}
	}

	srcBuf := C.CBytes(data)
	C.jpeg_mem_src(cinfo, (*C.uchar)(srcBuf), C.ulong(len(data)))

	coefArrays := C.s739_read_coefficients(cinfo, errMgr)
	if coefArrays == nil {
		msg := goMessage(errMgr)
		C.s739_finish_decompress(cinfo, errMgr)
		C.free(srcBuf)
		C.free(unsafe.Pointer(errMgr))
		return nil, &codecerr.FormatError{Found: fmt.Sprintf("not a readable jpeg: %s", msg)}
	}

	numComponents := int(cinfo.num_components)
	if jpegComponent != nil && (*jpegComponent < 0 || *jpegComponent >= numComponents) {
		C.s739_finish_decompress(cinfo, errMgr)
		C.free(srcBuf)
		C.free(unsafe.Pointer(errMgr))
		return nil, &codecerr.ParametersError{Reason: fmt.Sprintf("jpeg component %d out of range, image has %d", *jpegComponent, numComponents)}
	}

	coefs := flattenCoefficients(cinfo, coefArrays, jpegComponent)

	s := &Source{
		srcBuf:     srcBuf,
		errMgr:     errMgr,
		cinfo:      cinfo,
		coefArrays: coefArrays,
		coefs:      coefs,
		selective:  selective,
		depth:      depth,
		bits:       bits,
	}
	runtime.SetFinalizer(s, (*Source).Close)
	return s, nil
}

// flattenCoefficients walks every selected component's virtual block arrays
// once, component-major / block-row-major / block-column-major /
// in-block-index-minor, and records a live pointer to each coefficient.
func flattenCoefficients(cinfo *C.struct_jpeg_decompress_struct, coefArrays *C.jvirt_barray_ptr, jpegComponent *int) []coef {
	numComponents := int(cinfo.num_components)
	compInfo := unsafe.Slice(cinfo.comp_info, numComponents)
	arrays := unsafe.Slice(coefArrays, numComponents)

	var out []coef
	for ci := 0; ci < numComponents; ci++ {
		if jpegComponent != nil && ci != *jpegComponent {
			continue
		}
		info := &compInfo[ci]
		heightInBlocks := int(info.height_in_blocks)
		widthInBlocks := int(info.width_in_blocks)
		vSamp := int(info.v_samp_factor)
		if vSamp < 1 {
			vSamp = 1
		}

		for blkY := 0; blkY < heightInBlocks; blkY += vSamp {
			numRows := vSamp
			if blkY+numRows > heightInBlocks {
				numRows = heightInBlocks - blkY
			}
			// Request writable access unconditionally: a Source is opened once
			// and may serve either a read-only decode or an in-place embed: the
			// latter mutates coefficients through the same pointers this builds.
			buffer := C.s739_access_virt_barray(cinfo, arrays[ci], C.JDIMENSION(blkY), C.JDIMENSION(numRows), C.boolean(1))
			rows := unsafe.Slice(buffer, numRows)
			for _, rowPtr := range rows {
				blocks := unsafe.Slice(rowPtr, widthInBlocks)
				for bx := range blocks {
					block := &blocks[bx]
					for idx := 0; idx < 64; idx++ {
						out = append(out, coef{ptr: &block[idx], idx: idx})
					}
				}
			}
		}
	}
	return out
}

func goMessage(err *C.s739_error_mgr) string {
	return C.GoString(&err.message[0])
}

// Len returns the sample count visible to this source: every coefficient in
// selected components, minus any that selective mode hides.
func (s *Source) Len() int {
	if !s.selective {
		return len(s.coefs)
	}
	n := 0
	for _, c := range s.coefs {
		if !s.skip(c) {
			n++
		}
	}
	return n
}

// DomainBits is always 16: JPEG coefficients are stored as signed 16-bit
// quantized values.
func (s *Source) DomainBits() int {
	return 16
}

// skip reports whether c is hidden from traversal under selective mode: the
// DC term, a zero coefficient, or one sitting exactly at the embedding
// window's sign boundary.
func (s *Source) skip(c coef) bool {
	if !s.selective {
		return false
	}
	v := c.Value()
	return c.idx == 0 || v == 0 || v == int32(s.bits<<s.depth)
}

// advance moves the cursor to the next non-hidden coefficient, returning it.
func (s *Source) advance() (coef, bool) {
	for s.pos < len(s.coefs) {
		c := s.coefs[s.pos]
		s.pos++
		if !s.skip(c) {
			return c, true
		}
	}
	return coef{}, false
}

// Skip advances past n visible samples.
func (s *Source) Skip(n int) bool {
	for i := 0; i < n; i++ {
		if _, ok := s.advance(); !ok {
			return false
		}
	}
	return true
}

// Next returns the next visible coefficient and advances the cursor.
func (s *Source) Next() (sample.Sample, bool) {
	c, ok := s.advance()
	if !ok {
		return nil, false
	}
	return c, true
}

// Close tears down the decompression context. Safe to call more than once
// and safe to leave to the finalizer. Save needs the context, so a source
// that is to be saved must not be closed first; Save closes it itself.
func (s *Source) Close() {
	if s.cinfo == nil {
		return
	}
	runtime.SetFinalizer(s, nil)
	C.s739_finish_decompress(s.cinfo, s.errMgr)
	C.free(s.srcBuf)
	C.free(unsafe.Pointer(s.errMgr))
	s.cinfo = nil
}

// Save re-encodes the (possibly modified) coefficients as a JPEG, copying
// every critical parameter (size, sampling factors, quant tables) from the
// source and applying the requested Huffman-optimization profile. The
// source must not have been closed yet; Save closes it.
func (s *Source) Save(opts imageopts.JPEGOptions) ([]byte, error) {
	if !opts.Profile.Valid() {
		return nil, &codecerr.ParametersError{Reason: fmt.Sprintf("unknown jpeg profile %q", opts.Profile)}
	}
	if s.cinfo == nil {
		return nil, &codecerr.IoError{Sentinel: codecerr.ErrCarrierIoError, Cause: fmt.Errorf("jpeg source already closed")}
	}

	dstinfo := C.s739_compress_create(s.errMgr)
	if dstinfo == nil {
		return nil, &codecerr.IoError{Sentinel: codecerr.ErrCarrierIoError, Cause: fmt.Errorf("jpeg: %s", goMessage(s.errMgr))}
	}
	defer C.s739_compress_destroy(dstinfo)

	var outBuf *C.uchar
	var outSize C.ulong
	C.jpeg_mem_dest(dstinfo, &outBuf, &outSize)
	defer func() {
		if outBuf != nil {
			C.free(unsafe.Pointer(outBuf))
		}
	}()

	optimize := opts.Profile == imageopts.JPEGProfileMax || opts.Profile == ""
	rc := C.s739_write_coefficients(s.cinfo, dstinfo, s.coefArrays, boolToC(optimize), s.errMgr)

	// The decompression object owned coef_arrays; tear it down only after
	// the compress side has consumed them.
	s.Close()

	if rc != 0 {
		return nil, &codecerr.IoError{Sentinel: codecerr.ErrCarrierIoError, Cause: fmt.Errorf("jpeg: %s", goMessage(s.errMgr))}
	}
	return C.GoBytes(unsafe.Pointer(outBuf), C.int(outSize)), nil
}

func boolToC(b bool) C.boolean {
	if b {
		return C.boolean(1)
	}
	return C.boolean(0)
}
