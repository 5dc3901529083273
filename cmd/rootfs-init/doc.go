//go:build linux

// Command rootfs-init is the first process started inside the enclave.
//
// It mounts the encrypted SEFS union rootfs through the LibOS mount_fs
// system call and exits. In standard boot the rootfs key is read from
// key.txt on a hostfs transport mount; with ENCLAVE_AGENT=true the agent
// enclave has already resolved the rootfs and a bare mount is issued.
//
// # Usage
//
//	rootfs-init [--config-file=/etc/rootfs-init.yaml] [options]
//
// Every option can also be given through its environment variable, see
// rootfs-init --help. Exit status is 0 once the rootfs is mounted, the errno
// of a failed privileged mount, or 1 for any other failure.
package main
