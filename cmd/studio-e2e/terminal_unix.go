//go:build !windows

package main

import (
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// quietCtrlC clears the ECHOCTL flag so an interrupt doesn't print "^C" over
// the progress output. returns a function restoring the original state.
func quietCtrlC() func() {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}
	}

	termios, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return func() {}
	}

	original := *termios
	termios.Lflag &^= unix.ECHOCTL
	if err := unix.IoctlSetTermios(fd, ioctlWriteTermios, termios); err != nil {
		return func() {}
	}

	return func() {
		unix.IoctlSetTermios(fd, ioctlWriteTermios, &original) //nolint:errcheck // best-effort restore
	}
}
