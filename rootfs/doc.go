// Package rootfs describes the layered root filesystem handed to the LibOS.
//
// Config is an owned value: plain strings and a string slice, safe to copy
// and to keep around. The LibOS consumes a C layout instead:
//
//	struct user_rootfs_config {
//	    size_t len;                  // sizeof(struct user_rootfs_config)
//	    const char *upper_layer_path;
//	    const char *lower_layer_path;
//	    const char *entry_point;
//	    const char *hostfs_source;
//	    const char *hostfs_target;   // NULL selects the default "/host"
//	    const char **envp;           // NULL-terminated
//	};
//
// That layout only ever exists inside Config.WithRaw, which builds the
// NUL-terminated buffers, hands a pointer to the callback and keeps every
// buffer alive until the callback returns. The pointer must not escape the
// callback.
package rootfs
