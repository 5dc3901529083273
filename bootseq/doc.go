// Package bootseq runs the rootfs bootstrap of the first enclave process.
//
// The sequence is strictly linear and runs once:
//
//	Start -> ModeSelected -> [KeyAcquired -> KeyDecoded -> ConfigBuilt] -> MountInvoked -> Success | Fatal
//
// The bracketed steps run only for StandardBoot. AgentBoot, selected by
// ENCLAVE_AGENT=true (or 1), goes straight to the bare privileged mount.
// Every error is terminal; nothing is retried.
//
// # Configuration
//
// BootConfig carries every path and constant the sequence uses.
// DefaultBootConfig documents the defaults; LoadBootConfig overlays a YAML
// file on them:
//
//	transport:
//	  fs_type: hostfs
//	  source: hostfs
//	  target: /mnt
//	  options: dir=/keys
//	  key_file: key.txt
//	  allow_mount_failure: false
//	rootfs:
//	  upper_layer: /sefs/upper
//	  lower_layer: /sefs/lower
//	  entry_point: /
//	  hostfs_source: /tmp
//	  env: ["TEST=1234"]
//	mount_syscall: 363
package bootseq
