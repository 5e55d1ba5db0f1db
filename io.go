//go:build linux || darwin || netbsd || freebsd || openbsd || dragonfly

package naglfar

import "golang.org/x/sys/unix"

// ReadAny tells GoRead to deliver whatever the kernel makes available on
// the next readiness event, rather than accumulating to a target count.
const ReadAny = -1

// ReadResult is delivered on GoRead's completion channel. Err is set only
// for a hard (non-EAGAIN) read error; a clean EOF is Err == nil with a
// Data that may be shorter than requested — transient and hard errors are
// kept distinct instead of folding every non-EAGAIN outcome into EOF.
type ReadResult struct {
	Data []byte
	Err  error
}

// WriteResult is delivered on GoWrite's completion channel, symmetric
// with ReadResult.
type WriteResult struct {
	N   int
	Err error
}

// GoRead submits a nonblocking read on fd. If n is ReadAny, the
// completion fires after a single readiness event with whatever bytes
// were available; otherwise it accumulates across ready events until n
// bytes are read or EOF.
func GoRead(rt *Runtime, fd int, n int) *Channel[ReadResult] {
	c := NewChannel[ReadResult](rt)
	var buf []byte

	var reader Callback
	reader = func(bytesReady int, eof bool) Decision {
		if bytesReady > 0 {
			want := bytesReady
			if n != ReadAny {
				if remaining := n - len(buf); remaining < want {
					want = remaining
				}
			}
			chunk := make([]byte, want)
			nr, rerr := unix.Read(fd, chunk)
			if rerr == unix.EAGAIN {
				// transient race: interest fired but the read wasn't
				// ready yet. Re-arm without changing any state.
				return ReArm(reader)
			}
			if rerr != nil {
				c.Write(ReadResult{Data: buf, Err: rerr})
				return Disarm()
			}

			eof = nr == 0
			buf = append(buf, chunk[:nr]...)
			if !eof && n != ReadAny && len(buf) < n {
				return ReArm(reader)
			}
		}
		c.Write(ReadResult{Data: buf})
		return Disarm()
	}

	if err := rt.ioPump().arm(fd, Read, reader); err != nil {
		c.Write(ReadResult{Err: err})
	}
	return c
}

// GoWrite submits a nonblocking write of data to fd, accumulating across
// ready events until the whole buffer is written. An empty data slice is
// a pure writability probe, used by ConnectTCP.
func GoWrite(rt *Runtime, fd int, data []byte) *Channel[WriteResult] {
	c := NewChannel[WriteResult](rt)
	offset := 0

	var writer Callback
	writer = func(bytesReady int, eof bool) Decision {
		if !eof {
			if bytesReady > 0 && offset < len(data) {
				end := offset + bytesReady
				if end > len(data) {
					end = len(data)
				}
				nw, werr := unix.Write(fd, data[offset:end])
				if werr == unix.EAGAIN {
					return ReArm(writer)
				}
				if werr != nil {
					c.Write(WriteResult{N: offset, Err: werr})
					return Disarm()
				}
				offset += nw
			}
			if offset < len(data) {
				return ReArm(writer)
			}
		}
		c.Write(WriteResult{N: offset})
		return Disarm()
	}

	if err := rt.ioPump().arm(fd, Write, writer); err != nil {
		c.Write(WriteResult{Err: err})
	}
	return c
}

// GoClose purges notifier state for fd before issuing the close syscall,
// then closes fd directly.
func GoClose(rt *Runtime, fd int) error {
	if err := rt.ioPump().closeFD(fd); err != nil {
		return err
	}
	return closeRawFD(fd)
}
