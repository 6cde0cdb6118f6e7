// Package tables implements the OS tables: processes, users, groups, file, hash, os_version, system_info,
// osquery_info and uptime. Each table gets its data from a collector interface, so tests can replace the OS.
package tables

import (
	"log"
	"time"

	"github.com/go-pkgz/stringutils"

	"github.com/umputun/hostql/pkg/collector"
	"github.com/umputun/hostql/pkg/hashcache"
	"github.com/umputun/hostql/pkg/table"
)

//go:generate moq -out mocks/process_collector.go -pkg mocks -skip-ensure -fmt goimports . ProcessCollector
//go:generate moq -out mocks/account_collector.go -pkg mocks -skip-ensure -fmt goimports . AccountCollector
//go:generate moq -out mocks/host_collector.go -pkg mocks -skip-ensure -fmt goimports . HostCollector

// ProcessCollector lists and inspects running processes
type ProcessCollector interface {
	Pids() ([]int32, error)
	Process(pid int32) (collector.Process, error)
}

// AccountCollector lists and looks up local users and groups
type AccountCollector interface {
	Users() ([]collector.User, error)
	User(uid int64) (collector.User, error)
	Groups() ([]collector.Group, error)
	Group(gid int64) (collector.Group, error)
}

// HostCollector reports OS and host level information
type HostCollector interface {
	OSVersion() (collector.OSVersion, error)
	SystemInfo() (collector.SystemInfo, error)
	Uptime() (uint64, error)
	HostID() (string, error)
}

// Params for All
type Params struct {
	Processes   ProcessCollector
	Accounts    AccountCollector
	Host        HostCollector
	HashCache   *hashcache.Cache
	Instance    Instance
	Concurrency int      // concurrent process probes, 1 if not set
	Disabled    []string // names of tables to skip
}

// All makes every table, skipping the disabled ones. Collectors not set in params get the default implementation.
func All(p Params) []table.Plugin {
	if p.Processes == nil {
		p.Processes = collector.Processes{}
	}
	if p.Accounts == nil {
		p.Accounts = collector.NewAccounts()
	}
	if p.Host == nil {
		p.Host = collector.NewHost()
	}
	if p.HashCache == nil {
		p.HashCache = hashcache.New(true)
	}
	if p.Instance.StartTime.IsZero() {
		p.Instance.StartTime = time.Now()
	}

	all := []table.Plugin{
		&OSVersion{Host: p.Host},
		&SystemInfo{Host: p.Host},
		&OsqueryInfo{Host: p.Host, Instance: p.Instance},
		&Processes{Collector: p.Processes, Concurrency: p.Concurrency},
		&Users{Collector: p.Accounts},
		&Groups{Collector: p.Accounts},
		&File{},
		&Hash{Cache: p.HashCache},
		&Uptime{Host: p.Host},
	}

	res := make([]table.Plugin, 0, len(all))
	for _, t := range all {
		if stringutils.Contains(t.Name(), p.Disabled) {
			log.Printf("[INFO] table %s disabled", t.Name())
			continue
		}
		res = append(res, t)
	}
	return res
}
