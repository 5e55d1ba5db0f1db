//go:build linux || darwin || netbsd || freebsd || openbsd || dragonfly

package naglfar

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// dupConn extracts a raw, independently-owned file descriptor from a
// net.Conn via its SyscallConn, set to nonblocking mode.
func dupConn(conn net.Conn) (int, error) {
	sc, ok := conn.(interface {
		SyscallConn() (syscall.RawConn, error)
	})
	if !ok {
		return -1, ErrUnsupportedConn
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return -1, ErrUnsupportedConn
	}

	var newFD int
	var dupErr error
	ctrlErr := rc.Control(func(fd uintptr) {
		newFD, dupErr = unix.Dup(int(fd))
	})
	if ctrlErr != nil {
		return -1, ctrlErr
	}
	if dupErr != nil {
		return -1, dupErr
	}
	if err := unix.SetNonblock(newFD, true); err != nil {
		unix.Close(newFD)
		return -1, err
	}
	return newFD, nil
}

// closeRawFD closes a raw fd directly, bypassing any net.Conn wrapper.
func closeRawFD(fd int) error {
	return unix.Close(fd)
}
