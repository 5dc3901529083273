package mountfs

import (
	"errors"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/ruteri/tee-rootfs-init/interfaces"
	"github.com/ruteri/tee-rootfs-init/rootfs"
	"go.uber.org/atomic"
	"golang.org/x/sys/unix"
)

// SysMountFS is the default number of the LibOS mount_fs system call.
const SysMountFS uintptr = 363

var (
	ErrUnsupportedInvocation = errors.New("key and rootfs config must be both present or both absent")
	ErrAlreadyInvoked        = errors.New("privileged mount already invoked")
)

// OsError is a failure reported by the privileged operation.
type OsError struct {
	Result int64
	Errno  unix.Errno
}

func (e *OsError) Error() string {
	return fmt.Sprintf("privileged mount failed (result %d): %s", e.Result, e.Errno.Error())
}

func (e *OsError) Unwrap() error {
	return e.Errno
}

// Invoker issues the privileged mount at most once.
type Invoker struct {
	syscaller interfaces.Syscaller
	trap      uintptr
	log       *slog.Logger

	invoked atomic.Bool
}

func NewInvoker(syscaller interfaces.Syscaller, trap uintptr, log *slog.Logger) *Invoker {
	return &Invoker{
		syscaller: syscaller,
		trap:      trap,
		log:       log,
	}
}

// Invoke performs the layered mount when both key and cfg are given, or the
// agent-assisted bare mount when both are nil.
func (i *Invoker) Invoke(key *interfaces.KeyMaterial, cfg *rootfs.Config) error {
	if (key == nil) != (cfg == nil) {
		return ErrUnsupportedInvocation
	}
	if cfg != nil {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	if !i.invoked.CompareAndSwap(false, true) {
		return ErrAlreadyInvoked
	}

	if key == nil {
		i.log.Info("Issuing bare privileged mount", "syscall", i.trap)
		return i.call(unsafe.Pointer(nil))
	}

	i.log.Info("Issuing layered privileged mount",
		"syscall", i.trap,
		"upperLayer", cfg.UpperLayerPath,
		"lowerLayer", cfg.LowerLayerPath,
		"entryPoint", cfg.EntryPoint,
		"envCount", len(cfg.Env))

	return cfg.WithRaw(func(raw unsafe.Pointer) error {
		return i.call(unsafe.Pointer(key), raw)
	})
}

func (i *Invoker) call(args ...unsafe.Pointer) error {
	r, errno := i.syscaller.Syscall(i.trap, args...)
	if r < 0 {
		if errno == 0 {
			errno = unix.Errno(-r)
		}
		return &OsError{Result: r, Errno: errno}
	}

	i.log.Debug("Privileged mount returned", "result", r)
	return nil
}
