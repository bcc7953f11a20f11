//go:build linux

package probe

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Magic numbers not exported by x/sys/unix.
const (
	fuseMagic = 0x65735546
	smb2Magic = 0xfe534d42
	cifsMagic = 0xff534d42
)

// fsType names the filesystem holding path, for operator diagnostics. Stale
// directory caches are almost always a network or FUSE mount.
func fsType(path string) string {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return ""
	}
	magic := uint32(st.Type) //nolint:gosec // magic numbers fit in 32 bits on every arch
	switch magic {
	case fuseMagic:
		return "fuse"
	case unix.NFS_SUPER_MAGIC:
		return "nfs"
	case smb2Magic, cifsMagic:
		return "smb"
	case unix.TMPFS_MAGIC:
		return "tmpfs"
	case unix.OVERLAYFS_SUPER_MAGIC:
		return "overlay"
	case unix.EXT4_SUPER_MAGIC:
		return "ext4"
	case unix.XFS_SUPER_MAGIC:
		return "xfs"
	case unix.BTRFS_SUPER_MAGIC:
		return "btrfs"
	default:
		return fmt.Sprintf("0x%x", magic)
	}
}
