//go:build linux

package keyprovision

import "golang.org/x/sys/unix"

// UnixMounter calls mount(2).
type UnixMounter struct{}

func (UnixMounter) Mount(source, target, fstype string, flags uintptr, data string) error {
	return unix.Mount(source, target, fstype, flags, data)
}
