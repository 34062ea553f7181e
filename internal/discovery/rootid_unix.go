//go:build unix

package discovery

import "golang.org/x/sys/unix"

// statRoot returns the device and inode behind path. A lazily unmounted
// volume leaves the path resolving to the mount point underneath, which
// has a different device.
func statRoot(path string) (rootID, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return rootID{}, err
	}
	return rootID{dev: uint64(st.Dev), ino: uint64(st.Ino)}, nil
}
