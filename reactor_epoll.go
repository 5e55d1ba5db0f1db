//go:build linux

package naglfar

import (
	"time"

	"golang.org/x/sys/unix"
)

const maxEpollEvents = 1024

// epollNotifier is the Linux readiness-notifier backend. It tracks the
// currently-registered direction mask per fd to support atomic add/remove
// via EPOLL_CTL_MOD.
type epollNotifier struct {
	epfd   int
	mask   map[int]uint32
	events []unix.EpollEvent
}

func openNotifier() (notifier, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollNotifier{
		epfd:   epfd,
		mask:   make(map[int]uint32),
		events: make([]unix.EpollEvent, maxEpollEvents),
	}, nil
}

func epollBit(dir Direction) uint32 {
	if dir == Read {
		return unix.EPOLLIN
	}
	return unix.EPOLLOUT
}

func (n *epollNotifier) register(fd int, dir Direction) error {
	cur, exists := n.mask[fd]
	newMask := cur | epollBit(dir)
	op := unix.EPOLL_CTL_MOD
	if !exists {
		op = unix.EPOLL_CTL_ADD
	}
	ev := unix.EpollEvent{Events: newMask, Fd: int32(fd)}
	if err := unix.EpollCtl(n.epfd, op, fd, &ev); err != nil {
		return err
	}
	n.mask[fd] = newMask
	return nil
}

func (n *epollNotifier) unregister(fd int, dir Direction) error {
	cur, exists := n.mask[fd]
	if !exists {
		return nil
	}
	newMask := cur &^ epollBit(dir)
	if newMask == 0 {
		delete(n.mask, fd)
		return unix.EpollCtl(n.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	}
	ev := unix.EpollEvent{Events: newMask, Fd: int32(fd)}
	if err := unix.EpollCtl(n.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return err
	}
	n.mask[fd] = newMask
	return nil
}

// closeFD purges mask state without issuing EPOLL_CTL_DEL, relying on the
// close that follows to remove the kernel registration (epoll(7)).
func (n *epollNotifier) closeFD(fd int) error {
	delete(n.mask, fd)
	return nil
}

func (n *epollNotifier) poll(timeout time.Duration) ([]rawEvent, error) {
	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}
	count, err := unix.EpollWait(n.epfd, n.events, ms)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}

	out := make([]rawEvent, 0, count)
	for i := 0; i < count; i++ {
		ev := n.events[i]
		if ev.Events&unix.EPOLLPRI != 0 {
			// Treated as a hard assertion failure.
			return nil, ErrNotifierFailure
		}
		fd := int(ev.Fd)
		eof := ev.Events&(unix.EPOLLHUP|unix.EPOLLERR) != 0
		mask := n.mask[fd]
		if ev.Events&unix.EPOLLIN != 0 || (eof && mask&unix.EPOLLIN != 0) {
			out = append(out, rawEvent{fd: fd, dir: Read, eof: eof})
		}
		if ev.Events&unix.EPOLLOUT != 0 || (eof && mask&unix.EPOLLOUT != 0) {
			out = append(out, rawEvent{fd: fd, dir: Write, eof: eof})
		}
	}
	return out, nil
}

func (n *epollNotifier) close() error {
	return unix.Close(n.epfd)
}
