package keyprovision

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ruteri/tee-rootfs-init/interfaces"
)

// ProcMounts lists the mounts of the current mount namespace.
const ProcMounts = "/proc/mounts"

// TransportConfig describes the transport mount and the key file beneath it.
type TransportConfig struct {
	FSType  string `yaml:"fs_type"`
	Source  string `yaml:"source"`
	Target  string `yaml:"target"`
	Options string `yaml:"options"`
	// KeyFile is resolved relative to Target unless absolute.
	KeyFile string `yaml:"key_file"`

	AllowMountFailure bool   `yaml:"allow_mount_failure"`
	StagingPath       string `yaml:"staging_path"`
}

// DefaultTransportConfig mounts hostfs at /mnt exposing the host's /keys directory.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		FSType:  "hostfs",
		Source:  "hostfs",
		Target:  "/mnt",
		Options: "dir=/keys",
		KeyFile: "key.txt",
	}
}

// KeyPath returns the absolute path of the key file.
func (c TransportConfig) KeyPath() string {
	if filepath.IsAbs(c.KeyFile) {
		return c.KeyFile
	}
	return filepath.Join(c.Target, c.KeyFile)
}

// Provider implements interfaces.KeySource over a transport mount.
type Provider struct {
	cfg        TransportConfig
	mounter    interfaces.Mounter
	mountsFile string
	log        *slog.Logger
}

func NewProvider(cfg TransportConfig, mounter interfaces.Mounter, log *slog.Logger) *Provider {
	return &Provider{
		cfg:        cfg,
		mounter:    mounter,
		mountsFile: ProcMounts,
		log:        log,
	}
}

// AcquireKey mounts the transport filesystem and returns the key text.
func (p *Provider) AcquireKey() (string, error) {
	if err := p.mountTransport(); err != nil {
		return "", err
	}

	keyPath := p.cfg.KeyPath()
	key, err := LoadKey(keyPath)
	if err != nil {
		return "", err
	}
	p.log.Info("Loaded rootfs key", "path", keyPath)

	if p.cfg.StagingPath != "" {
		return p.stage(key)
	}
	return key, nil
}

func (p *Provider) mountTransport() error {
	if err := os.MkdirAll(p.cfg.Target, 0755); err != nil {
		return fmt.Errorf("%w: could not create transport mount point %s: %v", interfaces.ErrKeyUnavailable, p.cfg.Target, err)
	}

	if IsMounted(p.mountsFile, p.cfg.Target) {
		p.log.Info("Transport filesystem already mounted", "target", p.cfg.Target)
		return nil
	}

	err := p.mounter.Mount(p.cfg.Source, p.cfg.Target, p.cfg.FSType, 0, p.cfg.Options)
	if err == nil {
		p.log.Info("Mounted transport filesystem", "type", p.cfg.FSType, "target", p.cfg.Target, "options", p.cfg.Options)
		return nil
	}

	if p.cfg.AllowMountFailure {
		p.log.Warn("Transport mount failed, continuing with existing mount point contents", "target", p.cfg.Target, "err", err)
		return nil
	}
	return fmt.Errorf("%w: could not mount %s at %s: %v", interfaces.ErrKeyUnavailable, p.cfg.FSType, p.cfg.Target, err)
}

func (p *Provider) stage(key string) (string, error) {
	path := p.cfg.StagingPath
	p.log.Warn("Staging rootfs key in plaintext", "path", path)

	if err := os.WriteFile(path, []byte(key), 0600); err != nil {
		return "", fmt.Errorf("%w: could not write staging file: %v", interfaces.ErrKeyUnavailable, err)
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			p.log.Error("Could not remove key staging file", "path", path, "err", err)
		}
	}()

	return LoadKey(path)
}

// LoadKey reads a key file and strips trailing CR and LF characters.
func LoadKey(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", interfaces.ErrKeyUnavailable, err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// IsMounted reports whether target appears as a mount point in mountsFile.
func IsMounted(mountsFile, target string) bool {
	data, err := os.ReadFile(mountsFile)
	if err != nil {
		return false
	}

	target = filepath.Clean(target)
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == target {
			return true
		}
	}
	return false
}
