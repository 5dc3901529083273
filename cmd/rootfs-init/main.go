//go:build linux

package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ruteri/tee-rootfs-init/bootseq"
	"github.com/ruteri/tee-rootfs-init/cmd/flags"
	"github.com/ruteri/tee-rootfs-init/interfaces"
	"github.com/ruteri/tee-rootfs-init/keyprovision"
	"github.com/ruteri/tee-rootfs-init/mountfs"
	"github.com/urfave/cli/v2"
)

var configFlags []cli.Flag = []cli.Flag{
	&cli.StringFlag{
		Name:    "config-file",
		Usage:   "YAML boot config applied over the defaults. Flags set explicitly override it",
		EnvVars: []string{"ROOTFS_INIT_CONFIG"},
	},
	&cli.BoolFlag{
		Name:    "dry-run",
		Usage:   "log the privileged mount instead of issuing it",
		EnvVars: []string{"DRY_RUN"},
	},
	&cli.Uint64Flag{
		Name:    "mount-syscall-nr",
		Value:   uint64(mountfs.SysMountFS),
		Usage:   "number of the LibOS mount_fs system call",
		EnvVars: []string{"MOUNT_SYSCALL_NR"},
	},
}

var transportFlags []cli.Flag = []cli.Flag{
	&cli.StringFlag{
		Name:    "transport-fs-type",
		Value:   "hostfs",
		Usage:   "filesystem type of the key transport mount",
		EnvVars: []string{"TRANSPORT_FS_TYPE"},
	},
	&cli.StringFlag{
		Name:    "transport-source",
		Value:   "hostfs",
		Usage:   "source of the key transport mount",
		EnvVars: []string{"TRANSPORT_SOURCE"},
	},
	&cli.StringFlag{
		Name:    "transport-target",
		Value:   "/mnt",
		Usage:   "path to mount the key transport filesystem on",
		EnvVars: []string{"TRANSPORT_TARGET"},
	},
	&cli.StringFlag{
		Name:    "transport-options",
		Value:   "dir=/keys",
		Usage:   "mount options of the key transport filesystem",
		EnvVars: []string{"TRANSPORT_OPTIONS"},
	},
	&cli.StringFlag{
		Name:    "key-file",
		Value:   "key.txt",
		Usage:   "key file, relative to the transport target unless absolute",
		EnvVars: []string{"KEY_FILE"},
	},
	&cli.BoolFlag{
		Name:    "allow-transport-mount-failure",
		Usage:   "continue with the existing mount point contents if the transport mount fails",
		EnvVars: []string{"ALLOW_TRANSPORT_MOUNT_FAILURE"},
	},
	&cli.StringFlag{
		Name:    "key-staging-file",
		Usage:   "if set, the key is staged in plaintext at this path before decoding",
		EnvVars: []string{"KEY_STAGING_FILE"},
	},
}

var rootfsFlags []cli.Flag = []cli.Flag{
	&cli.StringFlag{
		Name:    "upper-layer",
		Value:   "/sefs/upper",
		Usage:   "writable upper layer of the union rootfs",
		EnvVars: []string{"ROOTFS_UPPER_LAYER"},
	},
	&cli.StringFlag{
		Name:    "lower-layer",
		Value:   "/sefs/lower",
		Usage:   "read-only encrypted lower layer of the union rootfs",
		EnvVars: []string{"ROOTFS_LOWER_LAYER"},
	},
	&cli.StringFlag{
		Name:    "entry-point",
		Value:   "/",
		Usage:   "mount point of the merged rootfs",
		EnvVars: []string{"ROOTFS_ENTRY_POINT"},
	},
	&cli.StringFlag{
		Name:    "hostfs-source",
		Value:   "/tmp",
		Usage:   "host directory passed through to the workload",
		EnvVars: []string{"HOSTFS_SOURCE"},
	},
	&cli.StringFlag{
		Name:    "hostfs-target",
		Usage:   "where the hostfs source appears. If unset the LibOS default (/host) is used",
		EnvVars: []string{"HOSTFS_TARGET"},
	},
	&cli.StringSliceFlag{
		Name:    "rootfs-env",
		Value:   cli.NewStringSlice("TEST=1234"),
		Usage:   "KEY=VALUE entries propagated into the new rootfs",
		EnvVars: []string{"ROOTFS_ENV"},
	},
}

const usage string = `Enclave rootfs bootstrap
Runs as the first process in the enclave and exits once the rootfs is mounted:
* Standard boot: fetch the key over hostfs, describe the SEFS union rootfs and mount it
* Agent boot (ENCLAVE_AGENT=true): issue the bare mount, the agent enclave resolves the rootfs`

func main() {
	app := &cli.App{
		Name:  "rootfs-init",
		Usage: usage,
		Flags: append(append(append(append([]cli.Flag{}, configFlags...), transportFlags...), rootfsFlags...), flags.CommonFlags...),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)

			cfg, err := bootConfigFromCLI(cCtx)
			if err != nil {
				return cli.Exit(err, 1)
			}

			mode := bootseq.SelectBootMode(os.Getenv)
			logger.Info("Starting rootfs bootstrap", "mode", mode.String(), "dryRun", cfg.DryRun)

			seq := newSequence(cfg, logger)
			if err := seq.Run(mode); err != nil {
				logger.Error("Rootfs bootstrap failed", "state", seq.State().String(), "err", err)
				return cli.Exit(err, bootseq.ExitCode(err))
			}

			logger.Info("Rootfs mounted")
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newSequence(cfg bootseq.BootConfig, logger *slog.Logger) *bootseq.Sequence {
	var syscaller interfaces.Syscaller = mountfs.LinuxSyscaller{}
	if cfg.DryRun {
		syscaller = mountfs.DryRunSyscaller{Log: logger}
	}

	keys := keyprovision.NewProvider(cfg.Transport, keyprovision.UnixMounter{}, logger)
	invoker := mountfs.NewInvoker(syscaller, uintptr(cfg.MountSyscall), logger)
	return bootseq.NewSequence(cfg, keys, invoker, logger)
}

// bootConfigFromCLI layers defaults, the optional config file and explicitly set flags.
func bootConfigFromCLI(cCtx *cli.Context) (bootseq.BootConfig, error) {
	cfg := bootseq.DefaultBootConfig()
	if path := cCtx.String("config-file"); path != "" {
		var err error
		if cfg, err = bootseq.LoadBootConfig(path); err != nil {
			return bootseq.BootConfig{}, err
		}
	}

	stringFlags := map[string]*string{
		"transport-fs-type": &cfg.Transport.FSType,
		"transport-source":  &cfg.Transport.Source,
		"transport-target":  &cfg.Transport.Target,
		"transport-options": &cfg.Transport.Options,
		"key-file":          &cfg.Transport.KeyFile,
		"key-staging-file":  &cfg.Transport.StagingPath,
		"upper-layer":       &cfg.Rootfs.UpperLayer,
		"lower-layer":       &cfg.Rootfs.LowerLayer,
		"entry-point":       &cfg.Rootfs.EntryPoint,
		"hostfs-source":     &cfg.Rootfs.HostfsSource,
		"hostfs-target":     &cfg.Rootfs.HostfsTarget,
	}
	for name, dst := range stringFlags {
		if cCtx.IsSet(name) {
			*dst = cCtx.String(name)
		}
	}

	if cCtx.IsSet("allow-transport-mount-failure") {
		cfg.Transport.AllowMountFailure = cCtx.Bool("allow-transport-mount-failure")
	}
	if cCtx.IsSet("dry-run") {
		cfg.DryRun = cCtx.Bool("dry-run")
	}
	if cCtx.IsSet("mount-syscall-nr") {
		cfg.MountSyscall = cCtx.Uint64("mount-syscall-nr")
	}
	if cCtx.IsSet("rootfs-env") {
		cfg.Rootfs.Env = cCtx.StringSlice("rootfs-env")
	}

	if cfg.MountSyscall == 0 {
		return bootseq.BootConfig{}, fmt.Errorf("invalid mount syscall number %d", cfg.MountSyscall)
	}
	return cfg, nil
}
