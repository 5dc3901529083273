// Package interfaces defines the types and collaborator contracts shared by
// the rootfs bootstrap components, separating them from implementations.
//
// # Collaborators
//
// Mounter: performs ordinary filesystem mounts, used for the transport
// filesystem that carries key material into the enclave.
//
// Syscaller: issues the single privileged mount operation exposed by the
// LibOS. Arguments are passed as unsafe.Pointer values that must stay valid
// for the duration of the call only.
//
// KeySource: yields the textual rootfs key.
//
// # Error Kinds
//
// Every failure in the boot sequence is fatal. Callers distinguish the cause
// with errors.Is against ErrKeyUnavailable, ErrMalformedKey, ErrInvalidPath
// and ErrInvalidEnv; failures of the privileged operation itself carry the
// errno reported by the LibOS.
package interfaces
