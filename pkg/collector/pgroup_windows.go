//go:build windows

package collector

func processGroup(int32) int64 { return -1 }
