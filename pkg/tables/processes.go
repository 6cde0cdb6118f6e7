package tables

import (
	"context"
	"errors"
	"log"
	"sort"
	"strconv"

	"github.com/go-pkgz/syncs"

	"github.com/umputun/hostql/pkg/collector"
	"github.com/umputun/hostql/pkg/table"
)

// Processes is processes table. Equality on pid probes only the requested processes,
// otherwise every running process is probed with limited concurrency. Range constraints on pid
// narrow the list of pids before probing.
type Processes struct {
	Collector   ProcessCollector
	Concurrency int
}

var processesSchema = table.Schema{
	{Name: "pid", Type: table.BigInt, Index: true, Unique: true},
	{Name: "name"},
	{Name: "path"},
	{Name: "cmdline"},
	{Name: "state"},
	{Name: "cwd"},
	{Name: "root"},
	{Name: "uid", Type: table.BigInt},
	{Name: "gid", Type: table.BigInt},
	{Name: "euid", Type: table.BigInt},
	{Name: "egid", Type: table.BigInt},
	{Name: "suid", Type: table.BigInt},
	{Name: "sgid", Type: table.BigInt},
	{Name: "on_disk", Type: table.Integer},
	{Name: "resident_size", Type: table.BigInt},
	{Name: "total_size", Type: table.BigInt},
	{Name: "user_time", Type: table.BigInt},
	{Name: "system_time", Type: table.BigInt},
	{Name: "start_time", Type: table.BigInt},
	{Name: "parent", Type: table.BigInt},
	{Name: "pgroup", Type: table.BigInt},
	{Name: "threads", Type: table.Integer},
	{Name: "nice", Type: table.Integer},
}

// Name of the table
func (t *Processes) Name() string { return "processes" }

// Schema of the table
func (t *Processes) Schema() table.Schema { return processesSchema }

// Generate returns rows of the requested or all processes in pid order.
// Processes exiting while probed are skipped.
func (t *Processes) Generate(req table.Request) ([]table.Row, error) {
	cl := req.Constraints.Get("pid")
	pids, all := t.requestedPids(cl)
	if all {
		var err error
		if pids, err = t.Collector.Pids(); err != nil {
			log.Printf("[WARN] %v", err)
			return nil, nil
		}
		sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	}
	if rng := pidRange(cl); len(rng) > 0 {
		filtered := pids[:0]
		for _, pid := range pids {
			if rng.Matches(strconv.Itoa(int(pid)), table.BigInt) {
				filtered = append(filtered, pid)
			}
		}
		pids = filtered
	}
	if len(pids) == 0 {
		return nil, nil
	}

	concurrency := t.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	// each probe writes its own slot, no locking needed and the pid order is kept
	slots := make([]*table.Row, len(pids))
	wg := syncs.NewErrSizedGroup(concurrency, syncs.Context(context.Background()))
	for i, pid := range pids {
		wg.Go(func() error {
			p, err := t.Collector.Process(pid)
			if err != nil {
				if !errors.Is(err, collector.ErrNotFound) {
					log.Printf("[DEBUG] can't probe process %d, %v", pid, err)
				}
				return nil
			}
			row := processRow(p)
			slots[i] = &row
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		log.Printf("[WARN] process probing, %v", err)
	}

	res := make([]table.Row, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			res = append(res, *r)
		}
	}
	return res, nil
}

// requestedPids returns pids from equality constraints. all is true if there are no such constraints,
// values not fitting a pid are dropped as they can't match any process.
func (t *Processes) requestedPids(cl table.ConstraintList) (pids []int32, all bool) {
	eq := cl.Equals()
	if len(eq) == 0 {
		return nil, true
	}
	for _, v := range eq {
		pid, err := strconv.ParseInt(v, 10, 32)
		if err != nil || pid <= 0 {
			continue
		}
		pids = append(pids, int32(pid))
	}
	return pids, false
}

// pidRange returns range constraints on pid with numeric operands. Other operands compare
// by the engine's type rules and are left to the engine.
func pidRange(cl table.ConstraintList) table.ConstraintList {
	if !cl.Exists(table.OpLT, table.OpLE, table.OpGT, table.OpGE) {
		return nil
	}
	var res table.ConstraintList
	for _, c := range cl {
		switch c.Op {
		case table.OpLT, table.OpLE, table.OpGT, table.OpGE:
		default:
			continue
		}
		if _, err := strconv.ParseFloat(c.Operand(), 64); err != nil {
			continue
		}
		res = append(res, c)
	}
	return res
}

func processRow(p collector.Process) table.Row {
	row := processesSchema.NewRow()
	row.SetInt("pid", int64(p.Pid))
	row.Set("name", p.Name)
	row.Set("path", p.Path)
	row.Set("cmdline", p.Cmdline)
	row.Set("state", p.State)
	row.Set("cwd", p.Cwd)
	row.Set("root", p.Root)
	row.SetInt("uid", p.UID)
	row.SetInt("gid", p.GID)
	row.SetInt("euid", p.EUID)
	row.SetInt("egid", p.EGID)
	row.SetInt("suid", p.SUID)
	row.SetInt("sgid", p.SGID)
	row.SetInt("on_disk", int64(p.OnDisk))
	row.SetUint("resident_size", p.ResidentSize)
	row.SetUint("total_size", p.TotalSize)
	row.SetInt("user_time", p.UserTime)
	row.SetInt("system_time", p.SystemTime)
	row.SetInt("start_time", p.StartTime)
	row.SetInt("parent", int64(p.Parent))
	row.SetInt("pgroup", p.PGroup)
	row.SetInt("threads", int64(p.Threads))
	row.SetInt("nice", int64(p.Nice))
	return row
}
