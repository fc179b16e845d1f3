package sched

import "golang.org/x/sys/unix"

// Console provides the fd 0 / fd 1 raw I/O that the USERPROG syscall layer
// assumed was always available on top of the scheduler (spec.md §9; see
// original_source/src/userprog/syscall.c, which special-cases exactly
// these two descriptors: fd 0 reads one byte at a time via input_getc(),
// fd 1 writes via putbuf(), and anything else goes through a
// process-local file table this package does not implement). fd 0/1 are
// backed by the real process console here, read and written directly with
// golang.org/x/sys/unix rather than through a simulated file table.
type Console struct{}

// ReadFd reads up to len(buf) bytes from the given descriptor. Only fd 0
// (stdin) is supported; any other value returns BadFileDescriptorError.
func (Console) ReadFd(fd int, buf []byte) (int, error) {
	if fd != unix.Stdin {
		return 0, &BadFileDescriptorError{Fd: fd}
	}
	return unix.Read(fd, buf)
}

// WriteFd writes buf to the given descriptor. Only fd 1 (stdout) is
// supported, matching syscall.c's putbuf for fd 1; any other value,
// including fd 2, returns BadFileDescriptorError.
func (Console) WriteFd(fd int, buf []byte) (int, error) {
	if fd != unix.Stdout {
		return 0, &BadFileDescriptorError{Fd: fd}
	}
	return unix.Write(fd, buf)
}
