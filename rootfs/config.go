package rootfs

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ruteri/tee-rootfs-init/interfaces"
)

// Config is the layered rootfs description.
type Config struct {
	// UpperLayerPath is the writable union layer.
	UpperLayerPath string
	// LowerLayerPath is the read-only, encrypted union layer.
	LowerLayerPath string
	// EntryPoint is where the merged rootfs is mounted.
	EntryPoint string
	// HostfsSource is the host directory passed through to the workload.
	HostfsSource string
	// HostfsTarget is where HostfsSource appears. Empty leaves it to the LibOS.
	HostfsTarget string
	// Env is propagated into the new root, as KEY=VALUE entries.
	Env []string
}

// NewConfig validates its arguments and returns a Config owning a copy of env.
func NewConfig(upperLayer, lowerLayer, entryPoint, hostfsSource, hostfsTarget string, env []string) (Config, error) {
	cfg := Config{
		UpperLayerPath: upperLayer,
		LowerLayerPath: lowerLayer,
		EntryPoint:     entryPoint,
		HostfsSource:   hostfsSource,
		HostfsTarget:   hostfsTarget,
		Env:            slices.Clone(env),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects strings that cannot be represented as C strings.
func (c Config) Validate() error {
	paths := []struct {
		name  string
		value string
	}{
		{"upper layer", c.UpperLayerPath},
		{"lower layer", c.LowerLayerPath},
		{"entry point", c.EntryPoint},
		{"hostfs source", c.HostfsSource},
		{"hostfs target", c.HostfsTarget},
	}
	for _, p := range paths {
		if strings.IndexByte(p.value, 0) != -1 {
			return fmt.Errorf("%w: %s contains a NUL byte", interfaces.ErrInvalidPath, p.name)
		}
	}

	for i, entry := range c.Env {
		if strings.IndexByte(entry, 0) != -1 {
			return fmt.Errorf("%w: entry %d contains a NUL byte", interfaces.ErrInvalidEnv, i)
		}
	}

	return nil
}
