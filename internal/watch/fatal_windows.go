// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"syscall"
)

// fatalErrnos are Win32 codes after which ReadDirectoryChangesW cannot
// continue: too many open files (4), invalid handle (6), not enough memory (8).
var fatalErrnos = []syscall.Errno{4, 6, 8}

func isFatalWatchError(err error) bool {
	for _, errno := range fatalErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
