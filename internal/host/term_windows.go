//go:build windows

package host

import "github.com/pkg/errors"

// SetRawIO is not implemented on windows; callers fall back to buffered
// line-oriented input.
func SetRawIO(fd int) (func(), error) {
	return nil, errors.New("raw IO not supported on this platform")
}
