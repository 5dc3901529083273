package bootseq

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ruteri/tee-rootfs-init/interfaces"
	"github.com/ruteri/tee-rootfs-init/keyprovision"
	"github.com/ruteri/tee-rootfs-init/mountfs"
	"gopkg.in/yaml.v3"
)

// AgentEnvVar selects AgentBoot when set to "true" or "1".
const AgentEnvVar = "ENCLAVE_AGENT"

// SelectBootMode derives the boot mode from the process environment.
func SelectBootMode(getenv func(string) string) interfaces.BootMode {
	return interfaces.BootModeFromFlag(getenv(AgentEnvVar))
}

type RootfsSettings struct {
	UpperLayer   string   `yaml:"upper_layer"`
	LowerLayer   string   `yaml:"lower_layer"`
	EntryPoint   string   `yaml:"entry_point"`
	HostfsSource string   `yaml:"hostfs_source"`
	HostfsTarget string   `yaml:"hostfs_target"`
	Env          []string `yaml:"env"`
}

type BootConfig struct {
	Transport    keyprovision.TransportConfig `yaml:"transport"`
	Rootfs       RootfsSettings               `yaml:"rootfs"`
	MountSyscall uint64                       `yaml:"mount_syscall"`
	DryRun       bool                         `yaml:"dry_run"`
}

// DefaultBootConfig returns the layout used by the Occlum SEFS image.
func DefaultBootConfig() BootConfig {
	return BootConfig{
		Transport: keyprovision.DefaultTransportConfig(),
		Rootfs: RootfsSettings{
			UpperLayer:   "/sefs/upper",
			LowerLayer:   "/sefs/lower",
			EntryPoint:   "/",
			HostfsSource: "/tmp",
			Env:          []string{"TEST=1234"},
		},
		MountSyscall: uint64(mountfs.SysMountFS),
	}
}

// LoadBootConfig reads a YAML file over the defaults.
func LoadBootConfig(path string) (BootConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BootConfig{}, fmt.Errorf("could not read boot config: %w", err)
	}
	return ParseBootConfig(data)
}

// ParseBootConfig decodes YAML over the defaults, rejecting unknown fields.
func ParseBootConfig(data []byte) (BootConfig, error) {
	cfg := DefaultBootConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return BootConfig{}, fmt.Errorf("could not parse boot config: %w", err)
	}

	return cfg, nil
}
