//go:build linux || darwin || netbsd || freebsd || openbsd || dragonfly

package naglfar

import (
	"bytes"
	"net"

	"golang.org/x/sys/unix"
)

// ScheduledFile is a buffered, delimiter-aware stream over an owned fd
// that yields the calling task on would-block instead of blocking a
// native thread. Exactly one background flusher task is ever associated
// with a given ScheduledFile at a time.
type ScheduledFile struct {
	rt  *Runtime
	fd  int
	cfg fileConfig

	incoming []byte
	outgoing []byte

	flushing bool
	flushers []*Channel[struct{}]

	closed bool
	nread  int64
	nwrite int64
}

// FromSocket duplicates sock's file descriptor (decoupling the new
// ScheduledFile's lifetime from sock's) and wraps it.
func FromSocket(rt *Runtime, sock net.Conn, opts ...FileOption) (*ScheduledFile, error) {
	fd, err := dupConn(sock)
	if err != nil {
		return nil, err
	}
	cfg := defaultFileConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &ScheduledFile{rt: rt, fd: fd, cfg: cfg}, nil
}

// ConnectTCP creates a nonblocking TCP socket, issues connect, and waits
// for it to become writable before returning. The returned ScheduledFile
// has autoflush enabled by default.
func ConnectTCP(rt *Runtime, addr string, opts ...FileOption) (*ScheduledFile, error) {
	raddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}

	domain := unix.AF_INET
	var sa unix.Sockaddr
	if ip4 := raddr.IP.To4(); ip4 != nil {
		s := &unix.SockaddrInet4{Port: raddr.Port}
		copy(s.Addr[:], ip4)
		sa = s
	} else {
		domain = unix.AF_INET6
		s := &unix.SockaddrInet6{Port: raddr.Port}
		copy(s.Addr[:], raddr.IP.To16())
		sa = s
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, err
	}

	if err := unix.Connect(fd, sa); err != nil && err != unix.EINPROGRESS {
		unix.Close(fd)
		return nil, err
	}

	// Wait until writable before doing anything else, using GoWrite with
	// an empty buffer purely as a readiness probe.
	if res := GoWrite(rt, fd, nil).Read(); res.Err != nil {
		unix.Close(fd)
		return nil, res.Err
	}

	cfg := defaultFileConfig()
	cfg.Autoflush = true
	for _, opt := range opts {
		opt(&cfg)
	}
	return &ScheduledFile{rt: rt, fd: fd, cfg: cfg}, nil
}

// Closed reports whether Close has been called.
func (f *ScheduledFile) Closed() bool { return f.closed }

// Stats returns the running read/write byte counters.
func (f *ScheduledFile) Stats() (nread, nwrite int64) { return f.nread, f.nwrite }

func (f *ScheduledFile) runFlusher() {
	for len(f.outgoing) > 0 && !f.closed {
		res := GoWrite(f.rt, f.fd, f.outgoing).Read()
		f.nwrite += int64(res.N)
		f.outgoing = f.outgoing[res.N:]
		if res.N == 0 || res.Err != nil {
			f.outgoing = nil
			break
		}
	}
	for _, waiter := range f.flushers {
		waiter.Write(struct{}{})
	}
	f.flushers = nil
	f.flushing = false
}

// Flush drains outgoing via a single background flusher task, spawning
// one if none is active. If block, the caller waits for the drain to
// complete.
func (f *ScheduledFile) Flush(block bool) {
	if !f.flushing {
		f.flushing = true
		f.rt.Spawn(f.runFlusher)
	}
	if block {
		done := NewChannel[struct{}](f.rt)
		f.flushers = append(f.flushers, done)
		done.Read()
	}
}

// Write appends data to outgoing. Autoflush triggers a flush on every
// write (blocking once outgoing exceeds the buffer threshold); otherwise
// a flush is only triggered, non-blocking, once the threshold is crossed.
func (f *ScheduledFile) Write(data []byte) error {
	if f.closed {
		return ErrClosedHandle
	}
	f.outgoing = append(f.outgoing, data...)
	if f.cfg.Autoflush {
		f.Flush(len(f.outgoing) > f.cfg.BufferSize)
	} else if len(f.outgoing) > f.cfg.BufferSize {
		f.Flush(false)
	}
	return nil
}

// read1 performs a single GoRead(ReadAny) round, updating nread.
func (f *ScheduledFile) read1() ([]byte, error) {
	res := GoRead(f.rt, f.fd, ReadAny).Read()
	f.nread += int64(len(res.Data))
	return res.Data, res.Err
}

// Read reads until incoming has n bytes or EOF; n == -1 means until EOF.
func (f *ScheduledFile) Read(n int) ([]byte, error) {
	if f.closed {
		return nil, ErrClosedHandle
	}
	if n == -1 {
		for {
			chunk, err := f.read1()
			if err != nil {
				return nil, err
			}
			if len(chunk) == 0 {
				break
			}
			f.incoming = append(f.incoming, chunk...)
		}
	} else {
		for n > len(f.incoming) {
			chunk, err := f.read1()
			if err != nil {
				return nil, err
			}
			f.incoming = append(f.incoming, chunk...)
			if len(chunk) == 0 {
				break
			}
		}
	}
	limit := n
	if n == -1 || limit > len(f.incoming) {
		limit = len(f.incoming)
	}
	data := f.incoming[:limit]
	f.incoming = f.incoming[limit:]
	return data, nil
}

// ReadUntil produces a finite sequence of byte chunks terminated at (and
// optionally including) sep; residual bytes after the separator remain
// in incoming for the next call, preceded by sep itself when includingSep
// is false. yield is called with each chunk in turn
// and may return false to stop early, leaving whatever hasn't been
// scanned yet in incoming.
//
// Once the accumulated buffer exceeds len(sep), everything but the
// trailing len(sep) bytes is emitted eagerly to bound memory use.
func (f *ScheduledFile) ReadUntil(sep []byte, includingSep bool, yield func([]byte) bool) error {
	result := f.incoming
	f.incoming = nil

	for {
		if pos := bytes.Index(result, sep); pos != -1 {
			rest := append([]byte(nil), result[pos:]...)
			result = result[:pos]
			if len(result) > 0 {
				if !yield(result) {
					f.incoming = append(rest, f.incoming...)
					return nil
				}
			}
			f.incoming = append(rest, f.incoming...)
			break
		}
		if len(sep) < len(result) {
			cut := len(result) - len(sep)
			chunk := append([]byte(nil), result[:cut]...)
			result = result[cut:]
			if !yield(chunk) {
				f.incoming = append(result, f.incoming...)
				return nil
			}
		}

		chunk, err := f.read1()
		if err != nil {
			return err
		}
		if len(chunk) == 0 {
			if len(result) > 0 {
				yield(result)
			}
			return nil
		}
		result = append(result, chunk...)
	}

	if includingSep && len(f.incoming) >= len(sep) && bytes.Equal(f.incoming[:len(sep)], sep) {
		f.incoming = f.incoming[len(sep):]
		yield(append([]byte(nil), sep...))
	}
	return nil
}

// ReadLine accumulates until sep is found or n bytes, whichever comes
// first, returning the line including the separator when present. n < 0
// means unbounded.
func (f *ScheduledFile) ReadLine(n int, sep []byte) ([]byte, error) {
	if sep == nil {
		sep = []byte{'\n'}
	}
	var line []byte
	err := f.ReadUntil(sep, true, func(chunk []byte) bool {
		line = append(line, chunk...)
		return n < 0 || len(line) < n
	})
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(line) > n {
		f.incoming = append(append([]byte(nil), line[n:]...), f.incoming...)
		line = line[:n]
	}
	return line, nil
}

// Lines iterates lines terminated by '\n' until EOF, calling yield for
// each; an empty final line signals EOF and is not emitted.
func (f *ScheduledFile) Lines(yield func([]byte) bool) error {
	for {
		line, err := f.ReadLine(-1, nil)
		if err != nil {
			return err
		}
		if len(line) == 0 {
			return nil
		}
		if !yield(line) {
			return nil
		}
	}
}

// Sendfile flushes the current outgoing buffer, then transfers nbytes
// from srcFD starting at offset using the zero-copy primitive, retrying
// on transient would-block.
func (f *ScheduledFile) Sendfile(srcFD int, offset int64, nbytes int64) (int64, error) {
	if f.closed {
		return 0, ErrClosedHandle
	}
	f.Flush(true)

	var total int64
	for total < nbytes {
		n, err := zeroCopySend(srcFD, f.fd, offset+total, nbytes-total)
		total += n
		if err != nil {
			if err == unix.EAGAIN {
				if res := GoWrite(f.rt, f.fd, nil).Read(); res.Err != nil {
					return total, res.Err
				}
				continue
			}
			return total, err
		}
		if n == 0 {
			break
		}
	}
	return total, nil
}

// Close flushes (if requested and outgoing is non-empty) then closes the
// underlying fd. Idempotent.
func (f *ScheduledFile) Close(flush bool) error {
	if f.closed {
		return nil
	}
	if flush && len(f.outgoing) > 0 {
		f.Flush(true)
	}
	f.closed = true
	fd := f.fd
	f.fd = -1
	return GoClose(f.rt, fd)
}
