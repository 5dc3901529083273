package mountfs

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"unsafe"

	"github.com/ruteri/tee-rootfs-init/cryptoutils"
	"github.com/ruteri/tee-rootfs-init/interfaces"
	"github.com/ruteri/tee-rootfs-init/rootfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// recordedCall captures what the stub saw while the arguments were still valid.
type recordedCall struct {
	trap    uintptr
	nargs   int
	nilArgs []bool
	key     *interfaces.KeyMaterial
	config  *rootfs.Config
}

type stubSyscaller struct {
	calls  []recordedCall
	result int64
	errno  unix.Errno
}

func (s *stubSyscaller) Syscall(trap uintptr, args ...unsafe.Pointer) (int64, unix.Errno) {
	call := recordedCall{trap: trap, nargs: len(args)}
	for _, a := range args {
		call.nilArgs = append(call.nilArgs, a == nil)
	}
	if len(args) == 2 {
		if args[0] != nil {
			key := *(*interfaces.KeyMaterial)(args[0])
			call.key = &key
		}
		if cfg, err := rootfs.FromRaw(args[1]); err == nil {
			call.config = &cfg
		}
	}
	s.calls = append(s.calls, call)
	return s.result, s.errno
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testInputs(t *testing.T) (*interfaces.KeyMaterial, *rootfs.Config) {
	key, err := cryptoutils.ParseKeyMaterial("aa-bb-cc-dd-ee-ff-00-11-22-33-44-55-66-77-88-99")
	require.NoError(t, err)
	cfg, err := rootfs.NewConfig("/sefs/upper", "/sefs/lower", "/", "/tmp", "", []string{"TEST=1234"})
	require.NoError(t, err)
	return &key, &cfg
}

func TestInvoker_Bare(t *testing.T) {
	stub := &stubSyscaller{}
	inv := NewInvoker(stub, SysMountFS, testLogger())

	require.NoError(t, inv.Invoke(nil, nil))
	require.Len(t, stub.calls, 1)
	assert.Equal(t, SysMountFS, stub.calls[0].trap)
	assert.Equal(t, 1, stub.calls[0].nargs, "bare mount takes exactly one argument")
	assert.Equal(t, []bool{true}, stub.calls[0].nilArgs)
}

func TestInvoker_Layered(t *testing.T) {
	stub := &stubSyscaller{}
	inv := NewInvoker(stub, SysMountFS, testLogger())
	key, cfg := testInputs(t)

	require.NoError(t, inv.Invoke(key, cfg))
	require.Len(t, stub.calls, 1)

	call := stub.calls[0]
	assert.Equal(t, 2, call.nargs)
	assert.Equal(t, []bool{false, false}, call.nilArgs)
	require.NotNil(t, call.key)
	assert.Equal(t, *key, *call.key)
	require.NotNil(t, call.config)
	assert.Equal(t, *cfg, *call.config)
}

func TestInvoker_UnsupportedShapes(t *testing.T) {
	key, cfg := testInputs(t)

	for name, invoke := range map[string]func(*Invoker) error{
		"key only":    func(i *Invoker) error { return i.Invoke(key, nil) },
		"config only": func(i *Invoker) error { return i.Invoke(nil, cfg) },
	} {
		t.Run(name, func(t *testing.T) {
			stub := &stubSyscaller{}
			inv := NewInvoker(stub, SysMountFS, testLogger())
			assert.ErrorIs(t, invoke(inv), ErrUnsupportedInvocation)
			assert.Empty(t, stub.calls)
		})
	}
}

func TestInvoker_NegativeResult(t *testing.T) {
	stub := &stubSyscaller{result: -1, errno: unix.ENOENT}
	inv := NewInvoker(stub, SysMountFS, testLogger())
	key, cfg := testInputs(t)

	err := inv.Invoke(key, cfg)
	require.Error(t, err)

	var osErr *OsError
	require.True(t, errors.As(err, &osErr))
	assert.Equal(t, int64(-1), osErr.Result)
	assert.Equal(t, unix.ENOENT, osErr.Errno)
	assert.ErrorIs(t, err, unix.ENOENT)
}

func TestInvoker_NegativeResultWithoutErrno(t *testing.T) {
	stub := &stubSyscaller{result: -int64(unix.EPERM)}
	inv := NewInvoker(stub, SysMountFS, testLogger())

	var osErr *OsError
	require.ErrorAs(t, inv.Invoke(nil, nil), &osErr)
	assert.Equal(t, unix.EPERM, osErr.Errno)
}

func TestInvoker_NonNegativeResultIsSuccess(t *testing.T) {
	for _, result := range []int64{0, 1, 42} {
		stub := &stubSyscaller{result: result}
		inv := NewInvoker(stub, SysMountFS, testLogger())
		assert.NoError(t, inv.Invoke(nil, nil))
	}
}

func TestInvoker_OneShot(t *testing.T) {
	stub := &stubSyscaller{result: -1, errno: unix.EIO}
	inv := NewInvoker(stub, SysMountFS, testLogger())

	require.Error(t, inv.Invoke(nil, nil))
	assert.ErrorIs(t, inv.Invoke(nil, nil), ErrAlreadyInvoked)
	assert.Len(t, stub.calls, 1, "failed mount must not be retried")
}

func TestInvoker_CustomTrap(t *testing.T) {
	stub := &stubSyscaller{}
	inv := NewInvoker(stub, 400, testLogger())
	require.NoError(t, inv.Invoke(nil, nil))
	assert.Equal(t, uintptr(400), stub.calls[0].trap)
}

func TestDryRunSyscaller(t *testing.T) {
	inv := NewInvoker(DryRunSyscaller{Log: testLogger()}, SysMountFS, testLogger())
	key, cfg := testInputs(t)
	assert.NoError(t, inv.Invoke(key, cfg))

	inv = NewInvoker(DryRunSyscaller{Log: testLogger()}, SysMountFS, testLogger())
	assert.NoError(t, inv.Invoke(nil, nil))
}

func TestInvoker_InvalidConfigDoesNotConsumeCall(t *testing.T) {
	stub := &stubSyscaller{}
	inv := NewInvoker(stub, SysMountFS, testLogger())
	key, _ := testInputs(t)

	bad := rootfs.Config{EntryPoint: "/\x00"}
	assert.ErrorIs(t, inv.Invoke(key, &bad), interfaces.ErrInvalidPath)
	assert.Empty(t, stub.calls)

	assert.NoError(t, inv.Invoke(nil, nil))
	assert.Len(t, stub.calls, 1)
}
