//go:build linux

package naglfar

import "golang.org/x/sys/unix"

// zeroCopySend implements the opaque zero-copy send primitive on Linux
// via sendfile(2).
func zeroCopySend(srcFD, dstFD int, offset int64, nbytes int64) (int64, error) {
	off := offset
	n, err := unix.Sendfile(dstFD, srcFD, &off, int(nbytes))
	if err != nil {
		if err == unix.EAGAIN {
			return int64(n), unix.EAGAIN
		}
		return int64(n), err
	}
	return int64(n), nil
}
