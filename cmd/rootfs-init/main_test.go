//go:build linux

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ruteri/tee-rootfs-init/bootseq"
	"github.com/ruteri/tee-rootfs-init/cmd/flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func parseBootConfig(t *testing.T, args ...string) (bootseq.BootConfig, error) {
	var cfg bootseq.BootConfig
	var cfgErr error
	app := &cli.App{
		Name:  "rootfs-init",
		Flags: append(append(append(append([]cli.Flag{}, configFlags...), transportFlags...), rootfsFlags...), flags.CommonFlags...),
		Action: func(cCtx *cli.Context) error {
			cfg, cfgErr = bootConfigFromCLI(cCtx)
			return nil
		},
	}
	require.NoError(t, app.Run(append([]string{"rootfs-init"}, args...)))
	return cfg, cfgErr
}

func TestBootConfigFromCLI_Defaults(t *testing.T) {
	cfg, err := parseBootConfig(t)
	require.NoError(t, err)
	assert.Equal(t, bootseq.DefaultBootConfig(), cfg)
}

func TestBootConfigFromCLI_Flags(t *testing.T) {
	cfg, err := parseBootConfig(t,
		"--upper-layer", "/layers/rw",
		"--hostfs-target", "/host",
		"--rootfs-env", "A=1", "--rootfs-env", "B=2",
		"--allow-transport-mount-failure",
		"--mount-syscall-nr", "400",
	)
	require.NoError(t, err)
	assert.Equal(t, "/layers/rw", cfg.Rootfs.UpperLayer)
	assert.Equal(t, "/sefs/lower", cfg.Rootfs.LowerLayer)
	assert.Equal(t, "/host", cfg.Rootfs.HostfsTarget)
	assert.Equal(t, []string{"A=1", "B=2"}, cfg.Rootfs.Env)
	assert.True(t, cfg.Transport.AllowMountFailure)
	assert.Equal(t, uint64(400), cfg.MountSyscall)
}

func TestBootConfigFromCLI_FileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rootfs:\n  entry_point: /root\n  lower_layer: /from-file\n"), 0600))

	cfg, err := parseBootConfig(t, "--config-file", path, "--lower-layer", "/from-flag")
	require.NoError(t, err)
	assert.Equal(t, "/root", cfg.Rootfs.EntryPoint)
	assert.Equal(t, "/from-flag", cfg.Rootfs.LowerLayer)
}

func TestBootConfigFromCLI_InvalidSyscall(t *testing.T) {
	_, err := parseBootConfig(t, "--mount-syscall-nr", "0")
	assert.Error(t, err)
}
