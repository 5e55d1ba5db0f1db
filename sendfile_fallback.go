//go:build netbsd || openbsd

package naglfar

import "golang.org/x/sys/unix"

// zeroCopySend falls back to a manual pread/write copy loop on kernels
// without a usable sendfile(2) binding in this module (netbsd, openbsd).
// Not zero-copy, but preserves the offset/nbytes/transferred contract of
// the opaque primitive.
func zeroCopySend(srcFD, dstFD int, offset int64, nbytes int64) (int64, error) {
	buf := make([]byte, 32*1024)
	if int64(len(buf)) > nbytes {
		buf = buf[:nbytes]
	}
	n, err := unix.Pread(srcFD, buf, offset)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	w, err := unix.Write(dstFD, buf[:n])
	return int64(w), err
}
