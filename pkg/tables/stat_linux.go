package tables

import (
	"io/fs"
	"syscall"
)

func statOf(fi fs.FileInfo) (fileStat, bool) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return fileStat{}, false
	}
	return fileStat{
		inode:     st.Ino,
		uid:       uint64(st.Uid),
		gid:       uint64(st.Gid),
		device:    uint64(st.Dev),
		hardLinks: uint64(st.Nlink),
		blockSize: int64(st.Blksize),
		atime:     int64(st.Atim.Sec),
		ctime:     int64(st.Ctim.Sec),
	}, true
}
