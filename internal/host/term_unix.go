//go:build !windows

package host

import (
	"syscall"

	"github.com/pkg/errors"
	"github.com/pkg/term/termios"
)

// SetRawIO switches fd to unbuffered, unechoed byte-at-a-time input so
// GetChar observes keystrokes immediately, the way a BASIC INPUT-style
// trap expects, rather than waiting on the line discipline to hand over
// a whole line. The returned func restores the prior settings.
func SetRawIO(fd int) (func(), error) {
	var tios syscall.Termios
	if err := termios.Tcgetattr(uintptr(fd), &tios); err != nil {
		return nil, errors.Wrap(err, "Tcgetattr failed")
	}
	raw := tios
	raw.Iflag &^= syscall.BRKINT | syscall.ISTRIP | syscall.IXON | syscall.IXOFF
	raw.Iflag |= syscall.IGNBRK | syscall.IGNPAR
	raw.Lflag &^= syscall.ICANON | syscall.ISIG | syscall.IEXTEN | syscall.ECHO
	raw.Cc[syscall.VMIN] = 1
	raw.Cc[syscall.VTIME] = 0
	if err := termios.Tcsetattr(uintptr(fd), termios.TCSANOW, &raw); err != nil {
		termios.Tcsetattr(uintptr(fd), termios.TCSANOW, &tios)
		return nil, errors.Wrap(err, "Tcsetattr failed")
	}
	return func() {
		termios.Tcsetattr(uintptr(fd), termios.TCSANOW, &tios)
	}, nil
}
