//go:build !windows

package hashcache

import (
	"os"
	"syscall"
)

func identity(path string, fi os.FileInfo) Identity {
	res := Identity{Path: path, Size: fi.Size(), ModTime: fi.ModTime().UnixNano()}
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		res.Device = uint64(st.Dev) // nolint
		res.Inode = st.Ino
	}
	return res
}
