// Package mountfs issues the LibOS privileged rootfs mount.
//
// The operation is a single system call (SYS_MOUNT_FS, 363 by default) with
// one of two argument shapes:
//
//	mount_fs(const sgx_key_128bit_t *key, const struct user_rootfs_config *cfg)
//	mount_fs(NULL)
//
// The first mounts the layered rootfs described by cfg, decrypting the lower
// layer with key. The second is used when an agent enclave has already
// resolved the rootfs. No other combination is issued.
//
// A negative result is reported as *OsError. The call is one-shot: an Invoker
// refuses to issue it twice, and a failure leaves the enclave without a
// usable root filesystem.
package mountfs
