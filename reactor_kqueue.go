//go:build darwin || freebsd || dragonfly

package naglfar

import (
	"time"

	"golang.org/x/sys/unix"
)

const maxKqueueEvents = 1024

// kqueueNotifier is the BSD-family readiness-notifier backend. Changes
// are batched in pending and submitted together with the next poll's
// Kevent call, the usual kqueue idiom for avoiding one syscall per
// registration.
type kqueueNotifier struct {
	kq      int
	pending []unix.Kevent_t
}

func openNotifier() (notifier, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}
	return &kqueueNotifier{kq: kq}, nil
}

func kqueueFilter(dir Direction) int16 {
	if dir == Read {
		return unix.EVFILT_READ
	}
	return unix.EVFILT_WRITE
}

func (n *kqueueNotifier) register(fd int, dir Direction) error {
	n.pending = append(n.pending, unix.Kevent_t{
		Ident:  uint64(fd),
		Filter: kqueueFilter(dir),
		Flags:  unix.EV_ADD | unix.EV_ENABLE,
	})
	return nil
}

func (n *kqueueNotifier) unregister(fd int, dir Direction) error {
	n.pending = append(n.pending, unix.Kevent_t{
		Ident:  uint64(fd),
		Filter: kqueueFilter(dir),
		Flags:  unix.EV_DELETE,
	})
	return nil
}

// closeFD drops any pending changes for fd; the kernel drops kqueue
// registrations for a closed fd on its own (kqueue(2)).
func (n *kqueueNotifier) closeFD(fd int) error {
	kept := n.pending[:0]
	for _, ch := range n.pending {
		if ch.Ident != uint64(fd) {
			kept = append(kept, ch)
		}
	}
	n.pending = kept
	return nil
}

func (n *kqueueNotifier) poll(timeout time.Duration) ([]rawEvent, error) {
	changes := n.pending
	n.pending = nil

	var ts *unix.Timespec
	if timeout >= 0 {
		t := unix.NsecToTimespec(int64(timeout))
		ts = &t
	}

	events := make([]unix.Kevent_t, maxKqueueEvents)
	count, err := unix.Kevent(n.kq, changes, events, ts)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}

	out := make([]rawEvent, 0, count)
	for i := 0; i < count; i++ {
		ev := events[i]
		if ev.Flags&unix.EV_ERROR != 0 {
			return nil, ErrNotifierFailure
		}
		dir := Read
		if ev.Filter == unix.EVFILT_WRITE {
			dir = Write
		}
		out = append(out, rawEvent{
			fd:        int(ev.Ident),
			dir:       dir,
			bytesHint: int(ev.Data),
			eof:       ev.Flags&unix.EV_EOF != 0,
		})
	}
	return out, nil
}

func (n *kqueueNotifier) close() error {
	return unix.Close(n.kq)
}
