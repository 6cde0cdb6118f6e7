// Package collector reads OS state: processes, accounts, host and OS information.
// Everything returned is a snapshot, nothing is cached between calls.
package collector

import "errors"

// ErrNotFound returned when the requested process, user or group doesn't exist
var ErrNotFound = errors.New("not found")

// Process is a snapshot of a single process. Ids unknown to the collector are -1,
// strings unknown are empty.
type Process struct {
	Pid          int32
	Name         string
	Path         string
	Cmdline      string
	State        string
	Cwd          string
	Root         string
	UID          int64
	GID          int64
	EUID         int64
	EGID         int64
	SUID         int64
	SGID         int64
	OnDisk       int // 1 if the executable exists, 0 if not, -1 unknown
	ResidentSize uint64
	TotalSize    uint64
	UserTime     int64 // milliseconds
	SystemTime   int64 // milliseconds
	StartTime    int64 // unix seconds
	Parent       int32
	PGroup       int64
	Threads      int32
	Nice         int32
}

// User is a local account
type User struct {
	UID         int64
	GID         int64
	Username    string
	Description string
	Directory   string
	Shell       string
	UUID        string
}

// Group is a local group
type Group struct {
	GID  int64
	Name string
}

// OSVersion describes the installed operating system
type OSVersion struct {
	Name         string
	Version      string
	VersionID    string // machine readable version, like 22.04
	Build        string
	Platform     string
	PlatformLike string
	Codename     string
	Arch         string
}

// SystemInfo describes the host hardware and naming
type SystemInfo struct {
	Hostname         string
	UUID             string
	CPUType          string
	CPUBrand         string
	CPUPhysicalCores int
	CPULogicalCores  int
	PhysicalMemory   uint64
	HardwareVendor   string
	HardwareModel    string
	ComputerName     string
	LocalHostname    string
}
