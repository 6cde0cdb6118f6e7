package collector

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/go-pkgz/fileutils"
	"github.com/shirou/gopsutil/v4/process"
)

// Processes collects process information with gopsutil
type Processes struct{}

// Pids returns pids of all running processes
func (Processes) Pids() ([]int32, error) {
	pids, err := process.Pids()
	if err != nil {
		return nil, fmt.Errorf("can't list processes: %w", err)
	}
	return pids, nil
}

// Process returns snapshot of a single process, ErrNotFound if it is not running.
// Fields the OS refuses to report, usually for processes of other users, are left unknown.
func (Processes) Process(pid int32) (Process, error) {
	p, err := process.NewProcessWithContext(context.Background(), pid)
	if err != nil {
		return Process{}, fmt.Errorf("process %d: %w", pid, ErrNotFound)
	}

	res := Process{Pid: pid, UID: -1, GID: -1, EUID: -1, EGID: -1, SUID: -1, SGID: -1, OnDisk: -1, Parent: -1, PGroup: -1}
	failed := []string{}
	fail := func(field string, err error) {
		if err != nil {
			failed = append(failed, field)
		}
	}

	var e error
	res.Name, e = p.Name()
	fail("name", e)
	res.Path, e = p.Exe()
	fail("path", e)
	res.Cmdline, e = p.Cmdline()
	fail("cmdline", e)
	res.Cwd, e = p.Cwd()
	fail("cwd", e)
	res.Root = processRoot(pid)

	if st, err := p.Status(); err == nil && len(st) > 0 {
		res.State = strings.Join(st, ",")
	}
	if uids, err := p.Uids(); err == nil {
		res.UID, res.EUID, res.SUID = idAt(uids, 0), idAt(uids, 1), idAt(uids, 2)
	} else {
		fail("uids", err)
	}
	if gids, err := p.Gids(); err == nil {
		res.GID, res.EGID, res.SGID = idAt(gids, 0), idAt(gids, 1), idAt(gids, 2)
	} else {
		fail("gids", err)
	}
	if res.Path != "" {
		res.OnDisk = 0
		if fileutils.IsFile(res.Path) {
			res.OnDisk = 1
		}
	}
	if mi, err := p.MemoryInfo(); err == nil && mi != nil {
		res.ResidentSize, res.TotalSize = mi.RSS, mi.VMS
	} else {
		fail("memory", err)
	}
	if ts, err := p.Times(); err == nil && ts != nil {
		res.UserTime, res.SystemTime = int64(ts.User*1000), int64(ts.System*1000)
	} else {
		fail("times", err)
	}
	if ct, err := p.CreateTime(); err == nil {
		res.StartTime = ct / 1000
	}
	if ppid, err := p.Ppid(); err == nil {
		res.Parent = ppid
	}
	res.PGroup = processGroup(pid)
	if th, err := p.NumThreads(); err == nil {
		res.Threads = th
	}
	if n, err := p.Nice(); err == nil {
		res.Nice = n
	}

	if len(failed) > 0 {
		log.Printf("[DEBUG] process %d, can't get %s", pid, strings.Join(failed, ", "))
	}
	return res, nil
}

func idAt(ids []uint32, i int) int64 {
	if i >= len(ids) {
		return -1
	}
	return int64(ids[i])
}

// processRoot returns root directory of the process where the OS exposes it
func processRoot(pid int32) string {
	root, err := os.Readlink(fmt.Sprintf("/proc/%d/root", pid))
	if err != nil {
		return ""
	}
	return root
}
