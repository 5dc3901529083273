// Package keyprovision fetches the rootfs key from outside the enclave.
//
// The host exposes a directory through a transport filesystem (hostfs in
// Occlum). The provider mounts it, reads the key file beneath the mount
// point and strips trailing line endings:
//
//	cfg := keyprovision.DefaultTransportConfig()
//	provider := keyprovision.NewProvider(cfg, keyprovision.UnixMounter{}, logger)
//	keyText, err := provider.AcquireKey()
//	if err != nil {
//		// errors.Is(err, interfaces.ErrKeyUnavailable)
//	}
//
// A failed transport mount is fatal unless AllowMountFailure is set, in
// which case the provider warns and reads whatever the mount point holds.
//
// When StagingPath is set the key text is written there (mode 0600), read
// back and removed before being returned. This reproduces boot flows that
// require the key on disk; it leaves plaintext key material on the enclave
// filesystem for the duration and is off by default.
//
// The key is not authenticated.
package keyprovision
