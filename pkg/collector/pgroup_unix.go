//go:build !windows

package collector

import "syscall"

func processGroup(pid int32) int64 {
	pg, err := syscall.Getpgid(int(pid))
	if err != nil {
		return -1
	}
	return int64(pg)
}
