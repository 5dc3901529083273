package rootfs

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/ruteri/tee-rootfs-init/interfaces"
	"golang.org/x/sys/unix"
)

// rawConfig mirrors struct user_rootfs_config.
type rawConfig struct {
	len            uintptr
	upperLayerPath *byte
	lowerLayerPath *byte
	entryPoint     *byte
	hostfsSource   *byte
	hostfsTarget   *byte
	envp           **byte
}

const rawConfigWords = 7

// Fails to compile unless rawConfig is exactly rawConfigWords machine words.
var _ [0]struct{} = [unsafe.Sizeof(rawConfig{}) - rawConfigWords*unsafe.Sizeof(uintptr(0))]struct{}{}

// RawSize is the value of the len field in the raw layout.
func RawSize() uintptr {
	return unsafe.Sizeof(rawConfig{})
}

// WithRaw builds the C layout of c and calls fn with a pointer to it.
func (c Config) WithRaw(fn func(raw unsafe.Pointer) error) error {
	if err := c.Validate(); err != nil {
		return err
	}

	upper, err := cString(c.UpperLayerPath, interfaces.ErrInvalidPath)
	if err != nil {
		return err
	}
	lower, err := cString(c.LowerLayerPath, interfaces.ErrInvalidPath)
	if err != nil {
		return err
	}
	entry, err := cString(c.EntryPoint, interfaces.ErrInvalidPath)
	if err != nil {
		return err
	}
	hostfsSource, err := cString(c.HostfsSource, interfaces.ErrInvalidPath)
	if err != nil {
		return err
	}

	var hostfsTarget *byte
	if c.HostfsTarget != "" {
		if hostfsTarget, err = cString(c.HostfsTarget, interfaces.ErrInvalidPath); err != nil {
			return err
		}
	}

	envp := make([]*byte, 0, len(c.Env)+1)
	for _, entry := range c.Env {
		p, err := cString(entry, interfaces.ErrInvalidEnv)
		if err != nil {
			return err
		}
		envp = append(envp, p)
	}
	envp = append(envp, nil)

	raw := &rawConfig{
		len:            unsafe.Sizeof(rawConfig{}),
		upperLayerPath: upper,
		lowerLayerPath: lower,
		entryPoint:     entry,
		hostfsSource:   hostfsSource,
		hostfsTarget:   hostfsTarget,
		envp:           &envp[0],
	}

	err = fn(unsafe.Pointer(raw))
	runtime.KeepAlive(raw)
	runtime.KeepAlive(envp)
	return err
}

// FromRaw reads a raw layout back into a Config. raw must come from WithRaw
// and is only valid inside its callback.
func FromRaw(raw unsafe.Pointer) (Config, error) {
	if raw == nil {
		return Config{}, fmt.Errorf("nil rootfs config")
	}

	r := (*rawConfig)(raw)
	if r.len != unsafe.Sizeof(rawConfig{}) {
		return Config{}, fmt.Errorf("rootfs config size mismatch: got %d, want %d", r.len, unsafe.Sizeof(rawConfig{}))
	}

	cfg := Config{
		UpperLayerPath: goString(r.upperLayerPath),
		LowerLayerPath: goString(r.lowerLayerPath),
		EntryPoint:     goString(r.entryPoint),
		HostfsSource:   goString(r.hostfsSource),
		HostfsTarget:   goString(r.hostfsTarget),
	}

	if r.envp != nil {
		for p := r.envp; *p != nil; p = (**byte)(unsafe.Add(unsafe.Pointer(p), unsafe.Sizeof(p))) {
			cfg.Env = append(cfg.Env, unix.BytePtrToString(*p))
		}
	}

	return cfg, nil
}

func cString(s string, kind error) (*byte, error) {
	p, err := unix.BytePtrFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kind, err)
	}
	return p, nil
}

func goString(p *byte) string {
	if p == nil {
		return ""
	}
	return unix.BytePtrToString(p)
}
