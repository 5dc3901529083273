package common

// Version is overridden at build time via -ldflags "-X .../common.Version=...".
var Version = "dev"

const PackageName = "tee-rootfs-init"
