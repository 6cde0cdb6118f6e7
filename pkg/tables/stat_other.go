//go:build !linux && !darwin

package tables

import "io/fs"

func statOf(fs.FileInfo) (fileStat, bool) { return fileStat{}, false }
