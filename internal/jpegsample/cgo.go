package jpegsample

/*
#cgo linux pkg-config: libjpeg
#cgo darwin LDFLAGS: -ljpeg
#cgo darwin CFLAGS: -I/usr/local/opt/jpeg-turbo/include
#cgo darwin LDFLAGS: -L/usr/local/opt/jpeg-turbo/lib

#include <stdio.h>
#include <stdlib.h>
#include <string.h>
#include <setjmp.h>
#include <jpeglib.h>

// s739_error_mgr extends libjpeg's error manager with a setjmp target, the
// textbook way (see libjpeg's own example.c) to turn a fatal libjpeg error
// into a recoverable failure instead of the library's default abort().
typedef struct {
	struct jpeg_error_mgr pub;
	jmp_buf setjmp_buffer;
	char message[JMSG_LENGTH_MAX];
} s739_error_mgr;

static void s739_error_exit(j_common_ptr cinfo) {
	s739_error_mgr *err = (s739_error_mgr *)cinfo->err;
	(*cinfo->err->format_message)(cinfo, err->message);
	longjmp(err->setjmp_buffer, 1);
}

static void s739_init_error_mgr(s739_error_mgr *err) {
	jpeg_std_error(&err->pub);
	err->pub.error_exit = s739_error_exit;
}

// s739_access_virt_barray calls the memory manager's access_virt_barray
// function pointer. It exists because indirecting through a function
// pointer buried in a struct field is friendlier to do from C than from
// cgo-generated Go.
static JBLOCKARRAY s739_access_virt_barray(j_decompress_ptr cinfo, jvirt_barray_ptr ptr,
	JDIMENSION start_row, JDIMENSION num_rows, boolean writable) {
	return (*cinfo->mem->access_virt_barray)((j_common_ptr)cinfo, ptr, start_row, num_rows, writable);
}

// s739_decompress_create creates a decompression object with the setjmp-based
// error manager wired in. Returns NULL on failure (never happens for plain
// creation, but keeps the call shape symmetric).
static j_decompress_ptr s739_decompress_create(s739_error_mgr *err) {
	j_decompress_ptr cinfo = (j_decompress_ptr)malloc(sizeof(struct jpeg_decompress_struct));
	if (cinfo == NULL) {
		return NULL;
	}
	cinfo->err = (struct jpeg_error_mgr *)err;
	if (setjmp(err->setjmp_buffer)) {
		free(cinfo);
		return NULL;
	}
	jpeg_create_decompress(cinfo);
	return cinfo;
}

// s739_read_coefficients parses the header and reads the coefficient
// arrays. Returns NULL on failure; the failure message is left in err.
static jvirt_barray_ptr *s739_read_coefficients(j_decompress_ptr cinfo, s739_error_mgr *err) {
	if (setjmp(err->setjmp_buffer)) {
		return NULL;
	}
	jpeg_read_header(cinfo, TRUE);
	return jpeg_read_coefficients(cinfo);
}

// s739_finish_decompress finalizes and destroys a decompression object.
// Safe to call even if a previous step already failed.
static void s739_finish_decompress(j_decompress_ptr cinfo, s739_error_mgr *err) {
	if (!setjmp(err->setjmp_buffer)) {
		jpeg_finish_decompress(cinfo);
	}
	jpeg_destroy_decompress(cinfo);
	free(cinfo);
}

// s739_write_coefficients copies critical parameters from srcinfo,
// applies the requested Huffman-optimization profile, re-serializes
// coef_arrays into dstinfo's destination, and finishes compression. No DCT
// runs on this path: jpeg_write_coefficients transplants already-quantized
// coefficients, so optimize_coding is the only profile lever that does
// anything. Returns 0 on success.
static int s739_write_coefficients(j_decompress_ptr srcinfo, j_compress_ptr dstinfo,
	jvirt_barray_ptr *coef_arrays, boolean optimize_coding, s739_error_mgr *err) {
	if (setjmp(err->setjmp_buffer)) {
		return 1;
	}
	jpeg_copy_critical_parameters(srcinfo, dstinfo);
	dstinfo->optimize_coding = optimize_coding;
	jpeg_write_coefficients(dstinfo, coef_arrays);
	jpeg_finish_compress(dstinfo);
	return 0;
}

static j_compress_ptr s739_compress_create(s739_error_mgr *err) {
	j_compress_ptr cinfo = (j_compress_ptr)malloc(sizeof(struct jpeg_compress_struct));
	if (cinfo == NULL) {
		return NULL;
	}
	cinfo->err = (struct jpeg_error_mgr *)err;
	if (setjmp(err->setjmp_buffer)) {
		free(cinfo);
		return NULL;
	}
	jpeg_create_compress(cinfo);
	return cinfo;
}

static void s739_compress_destroy(j_compress_ptr cinfo) {
	jpeg_destroy_compress(cinfo);
	free(cinfo);
}
*/
import "C"
