//go:build linux

package mountfs

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// LinuxSyscaller issues real system calls. Inside the LibOS these are
// intercepted by the enclave runtime.
type LinuxSyscaller struct{}

func (LinuxSyscaller) Syscall(trap uintptr, args ...unsafe.Pointer) (int64, unix.Errno) {
	var a [3]unsafe.Pointer
	copy(a[:], args)

	r1, _, errno := unix.Syscall(trap, uintptr(a[0]), uintptr(a[1]), uintptr(a[2]))
	return int64(r1), errno
}
