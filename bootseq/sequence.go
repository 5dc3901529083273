package bootseq

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ruteri/tee-rootfs-init/cryptoutils"
	"github.com/ruteri/tee-rootfs-init/interfaces"
	"github.com/ruteri/tee-rootfs-init/mountfs"
	"github.com/ruteri/tee-rootfs-init/rootfs"
)

type State int

const (
	Start State = iota
	ModeSelected
	KeyAcquired
	KeyDecoded
	ConfigBuilt
	MountInvoked
	Success
	Fatal
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case ModeSelected:
		return "mode-selected"
	case KeyAcquired:
		return "key-acquired"
	case KeyDecoded:
		return "key-decoded"
	case ConfigBuilt:
		return "config-built"
	case MountInvoked:
		return "mount-invoked"
	case Success:
		return "success"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

var ErrAlreadyRun = errors.New("boot sequence already run")

// MountInvoker issues the privileged mount; see mountfs.Invoker.
type MountInvoker interface {
	Invoke(key *interfaces.KeyMaterial, cfg *rootfs.Config) error
}

// Sequence is the single-use rootfs bootstrap.
type Sequence struct {
	cfg     BootConfig
	keys    interfaces.KeySource
	invoker MountInvoker
	log     *slog.Logger

	state State
}

func NewSequence(cfg BootConfig, keys interfaces.KeySource, invoker MountInvoker, log *slog.Logger) *Sequence {
	return &Sequence{
		cfg:     cfg,
		keys:    keys,
		invoker: invoker,
		log:     log,
		state:   Start,
	}
}

// State returns the last state reached.
func (s *Sequence) State() State {
	return s.state
}

// Run executes the sequence for mode. It ends in Success or Fatal.
func (s *Sequence) Run(mode interfaces.BootMode) error {
	if s.state != Start {
		return ErrAlreadyRun
	}
	s.transition(ModeSelected, "mode", mode.String())

	var err error
	switch mode {
	case interfaces.AgentBoot:
		err = s.runAgent()
	default:
		err = s.runStandard()
	}

	if err != nil {
		s.transition(Fatal, "err", err)
		return err
	}
	s.transition(Success)
	return nil
}

func (s *Sequence) runAgent() error {
	s.transition(MountInvoked)
	if err := s.invoker.Invoke(nil, nil); err != nil {
		return fmt.Errorf("agent rootfs mount failed: %w", err)
	}
	return nil
}

func (s *Sequence) runStandard() error {
	keyText, err := s.keys.AcquireKey()
	if err != nil {
		return fmt.Errorf("could not acquire rootfs key: %w", err)
	}
	s.transition(KeyAcquired)

	key, err := cryptoutils.ParseKeyMaterial(keyText)
	if err != nil {
		return fmt.Errorf("could not decode rootfs key: %w", err)
	}
	defer clear(key[:])
	s.transition(KeyDecoded, "fingerprint", key.Fingerprint())

	r := s.cfg.Rootfs
	cfg, err := rootfs.NewConfig(r.UpperLayer, r.LowerLayer, r.EntryPoint, r.HostfsSource, r.HostfsTarget, r.Env)
	if err != nil {
		return fmt.Errorf("could not build rootfs config: %w", err)
	}
	s.transition(ConfigBuilt)

	s.transition(MountInvoked)
	if err := s.invoker.Invoke(&key, &cfg); err != nil {
		return fmt.Errorf("layered rootfs mount failed: %w", err)
	}
	return nil
}

func (s *Sequence) transition(next State, attrs ...any) {
	s.log.Debug("Boot state transition", append([]any{"from", s.state.String(), "to", next.String()}, attrs...)...)
	s.state = next
}

// ExitCode maps a Run result to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var osErr *mountfs.OsError
	if errors.As(err, &osErr) && osErr.Errno > 0 && osErr.Errno < 256 {
		return int(osErr.Errno)
	}
	return 1
}
