//go:build darwin || freebsd || dragonfly

package naglfar

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// zeroCopySend implements the opaque zero-copy send primitive on
// BSD-family kernels via the 6-argument sendfile(2) shape (no headers or
// trailers). This calls the kernel directly rather than through libc, the
// usual way to avoid cgo in Go.
func zeroCopySend(srcFD, dstFD int, offset int64, nbytes int64) (int64, error) {
	var sbytes int64
	_, _, errno := unix.Syscall6(
		unix.SYS_SENDFILE,
		uintptr(srcFD),
		uintptr(dstFD),
		uintptr(offset),
		uintptr(nbytes),
		0, // struct sf_hdtr* hdtr — no headers/trailers
		uintptr(unsafe.Pointer(&sbytes)),
	)
	if errno != 0 {
		if errno == unix.EAGAIN {
			return sbytes, unix.EAGAIN
		}
		return sbytes, errno
	}
	return sbytes, nil
}
