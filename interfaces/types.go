package interfaces

import (
	"errors"
	"strings"
	"unsafe"

	"github.com/ruteri/tee-rootfs-init/cryptoutils"
	"golang.org/x/sys/unix"
)

type KeyMaterial = cryptoutils.KeyMaterial

var (
	ErrKeyUnavailable = errors.New("key unavailable")
	ErrMalformedKey   = cryptoutils.ErrMalformedKey
	ErrInvalidPath    = errors.New("invalid path")
	ErrInvalidEnv     = errors.New("invalid environment entry")
)

// BootMode selects how the rootfs is resolved.
type BootMode int

const (
	// StandardBoot fetches the key and describes the layered rootfs itself.
	StandardBoot BootMode = iota
	// AgentBoot leaves rootfs resolution to a cooperating agent enclave.
	AgentBoot
)

func (m BootMode) String() string {
	switch m {
	case AgentBoot:
		return "agent"
	case StandardBoot:
		return "standard"
	default:
		return "unknown"
	}
}

// BootModeFromFlag maps the value of the agent flag to a BootMode.
// "true" in any letter case and "1" select AgentBoot, anything else StandardBoot.
func BootModeFromFlag(value string) BootMode {
	if strings.EqualFold(value, "true") || value == "1" {
		return AgentBoot
	}
	return StandardBoot
}

// Mounter mounts filesystems, mirroring mount(2).
type Mounter interface {
	Mount(source, target, fstype string, flags uintptr, data string) error
}

// Syscaller issues a raw system call. A negative result reports failure
// alongside the errno.
type Syscaller interface {
	Syscall(trap uintptr, args ...unsafe.Pointer) (int64, unix.Errno)
}

// KeySource yields the rootfs key in its textual form.
type KeySource interface {
	AcquireKey() (string, error)
}
