package mountfs

import (
	"log/slog"
	"unsafe"

	"github.com/ruteri/tee-rootfs-init/rootfs"
	"golang.org/x/sys/unix"
)

// DryRunSyscaller logs the privileged call it would make and reports success.
// It expects the argument shapes produced by Invoker.
type DryRunSyscaller struct {
	Log *slog.Logger
}

func (d DryRunSyscaller) Syscall(trap uintptr, args ...unsafe.Pointer) (int64, unix.Errno) {
	if len(args) != 2 {
		d.Log.Info("Dry run: privileged mount", "syscall", trap, "args", len(args), "bare", len(args) == 1 && args[0] == nil)
		return 0, 0
	}

	cfg, err := rootfs.FromRaw(args[1])
	if err != nil {
		d.Log.Error("Dry run: unreadable rootfs config", "err", err)
		return -1, unix.EINVAL
	}

	d.Log.Info("Dry run: privileged mount",
		"syscall", trap,
		"keyPresent", args[0] != nil,
		"upperLayer", cfg.UpperLayerPath,
		"lowerLayer", cfg.LowerLayerPath,
		"entryPoint", cfg.EntryPoint,
		"hostfsSource", cfg.HostfsSource,
		"hostfsTarget", cfg.HostfsTarget,
		"env", cfg.Env)
	return 0, 0
}
