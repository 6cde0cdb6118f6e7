//go:build windows

package hashcache

import "os"

// no inode or device in FileInfo on windows, identity relies on size and mtime
func identity(path string, fi os.FileInfo) Identity {
	return Identity{Path: path, Size: fi.Size(), ModTime: fi.ModTime().UnixNano()}
}
