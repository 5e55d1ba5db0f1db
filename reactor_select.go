//go:build netbsd || openbsd

package naglfar

import (
	"time"

	"golang.org/x/sys/unix"
)

// selectNotifier is the select(2)-based fallback backend for platforms
// without an epoll or kqueue binding wired into this module. It pays
// for an O(maxfd) scan per poll and the classic FD_SETSIZE ceiling,
// acceptable only as a last-resort backend.
type selectNotifier struct {
	readFDs  map[int]bool
	writeFDs map[int]bool
}

func openNotifier() (notifier, error) {
	return &selectNotifier{
		readFDs:  make(map[int]bool),
		writeFDs: make(map[int]bool),
	}, nil
}

func (n *selectNotifier) register(fd int, dir Direction) error {
	if dir == Read {
		n.readFDs[fd] = true
	} else {
		n.writeFDs[fd] = true
	}
	return nil
}

func (n *selectNotifier) unregister(fd int, dir Direction) error {
	if dir == Read {
		delete(n.readFDs, fd)
	} else {
		delete(n.writeFDs, fd)
	}
	return nil
}

func (n *selectNotifier) closeFD(fd int) error {
	delete(n.readFDs, fd)
	delete(n.writeFDs, fd)
	return nil
}

func fdSet(set *unix.FdSet, fd int) {
	set.Bits[fd/32] |= uint32(1) << (uint(fd) % 32)
}

func fdIsSet(set *unix.FdSet, fd int) bool {
	return set.Bits[fd/32]&(uint32(1)<<(uint(fd)%32)) != 0
}

func (n *selectNotifier) poll(timeout time.Duration) ([]rawEvent, error) {
	var rset, wset unix.FdSet
	maxFD := 0
	for fd := range n.readFDs {
		fdSet(&rset, fd)
		if fd > maxFD {
			maxFD = fd
		}
	}
	for fd := range n.writeFDs {
		fdSet(&wset, fd)
		if fd > maxFD {
			maxFD = fd
		}
	}

	var tv *unix.Timeval
	if timeout >= 0 {
		t := unix.NsecToTimeval(int64(timeout))
		tv = &t
	}

	_, err := unix.Select(maxFD+1, &rset, &wset, nil, tv)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}

	var out []rawEvent
	for fd := range n.readFDs {
		if fdIsSet(&rset, fd) {
			out = append(out, rawEvent{fd: fd, dir: Read, bytesHint: defaultReadBudget})
		}
	}
	for fd := range n.writeFDs {
		if fdIsSet(&wset, fd) {
			out = append(out, rawEvent{fd: fd, dir: Write, bytesHint: defaultReadBudget})
		}
	}
	return out, nil
}

func (n *selectNotifier) close() error { return nil }
