package query

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-pkgz/syncs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/hostql/pkg/collector"
	"github.com/umputun/hostql/pkg/hashcache"
	"github.com/umputun/hostql/pkg/registry"
	"github.com/umputun/hostql/pkg/table"
	"github.com/umputun/hostql/pkg/tables"
	"github.com/umputun/hostql/pkg/tables/mocks"
)

func newEngine(t *testing.T, plugins ...table.Plugin) *Engine {
	t.Helper()
	reg, err := registry.New(plugins...)
	require.NoError(t, err)
	e, err := New(reg)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, e.Close()) })
	return e
}

func systemEngine(t *testing.T, cache *hashcache.Cache) *Engine {
	t.Helper()
	return newEngine(t, tables.All(tables.Params{Concurrency: 8, HashCache: cache})...)
}

func execute(t *testing.T, e *Engine, q string) []table.Row {
	t.Helper()
	res, err := e.Execute(context.Background(), q)
	require.NoError(t, err, q)
	return res.Rows
}

func TestEngine_SystemTables(t *testing.T) {
	e := systemEngine(t, nil)

	t.Run("os_version", func(t *testing.T) {
		rows := execute(t, e, "select * from os_version")
		require.Len(t, rows, 1)
		assert.NotEmpty(t, rows[0].Value("major"))
		assert.NotEmpty(t, rows[0].Value("name"))
	})

	t.Run("hostname", func(t *testing.T) {
		rows := execute(t, e, "select hostname from system_info")
		require.Len(t, rows, 1)
		assert.NotEmpty(t, rows[0].Value("hostname"))
		assert.Equal(t, []string{"hostname"}, rows[0].Columns())
	})

	t.Run("process info", func(t *testing.T) {
		rows := execute(t, e, "select * from osquery_info join processes using (pid)")
		require.Len(t, rows, 1)
		_, ok := rows[0].Get("uid")
		assert.True(t, ok)
		if runtime.GOOS != "windows" {
			assert.NotEqual(t, "-1", rows[0].Value("uid"))
		}
		assert.NotEqual(t, "-1", rows[0].Value("parent"))
		assert.Equal(t, strconv.Itoa(os.Getpid()), rows[0].Value("pid"))
	})

	t.Run("processes", func(t *testing.T) {
		rows := execute(t, e, "select pid, name from processes limit 1")
		require.Len(t, rows, 1)
		assert.NotEmpty(t, rows[0].Value("pid"))
		assert.NotEmpty(t, rows[0].Value("name"))

		rows = execute(t, e, "select pid, name from processes where pid = -1")
		assert.Empty(t, rows)
	})

	t.Run("processes memory and cpu", func(t *testing.T) {
		q := "select * from osquery_info join processes using (pid)"
		r1 := execute(t, e, q)
		require.Len(t, r1, 1)
		rss, err := strconv.ParseInt(r1[0].Value("resident_size"), 10, 64)
		require.NoError(t, err)
		assert.Greater(t, rss/(1024*1024), int64(1))
		total, err := strconv.ParseInt(r1[0].Value("total_size"), 10, 64)
		require.NoError(t, err)
		assert.Greater(t, total/(1024*1024), int64(1))

		r2 := execute(t, e, q)
		require.Len(t, r2, 1)
		start, err := strconv.ParseInt(r1[0].Value("user_time"), 10, 64)
		require.NoError(t, err)
		end, err := strconv.ParseInt(r2[0].Value("user_time"), 10, 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, end-start, int64(0))
		assert.Less(t, end-start, int64(100*1000))
	})

	t.Run("users", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("no passwd on windows")
		}
		rows := execute(t, e, "select uid, uuid, username from users limit 1")
		require.Len(t, rows, 1)
		assert.NotEmpty(t, rows[0].Value("uid"))
		assert.NotEmpty(t, rows[0].Value("username"))

		rows = execute(t, e, "select uid, uuid, username from users")
		assert.Greater(t, len(rows), 1)

		rows = execute(t, e, "select uuid, username from users where uuid = -1")
		assert.Empty(t, rows)

		rows = execute(t, e, "select username from users where uid = 0")
		require.Len(t, rows, 1)
		assert.Equal(t, "root", rows[0].Value("username"))
	})

	t.Run("uptime", func(t *testing.T) {
		rows := execute(t, e, "select total_seconds from uptime")
		require.Len(t, rows, 1)
		assert.NotEqual(t, "0", rows[0].Value("total_seconds"))
	})
}

func TestEngine_AbstractJoins(t *testing.T) {
	e := systemEngine(t, hashcache.New(true))
	preamble := "select * from (select path from osquery_info join processes using (pid)) p"

	for _, q := range []string{
		preamble + " join file using (path);",
		preamble + " left join file using (path);",
		preamble + " join file using (path) join hash using (path);",
		preamble + " left join file using (path) left join hash using (path);",
	} {
		t.Run(q, func(t *testing.T) {
			rows := execute(t, e, q)
			require.Len(t, rows, 1)
			assert.NotEmpty(t, rows[0].Value("path"))
		})
	}

	t.Run("equals and likes", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("no /dev on windows")
		}
		rows := execute(t, e, `select path from file where path = '/etc/' or path LIKE '/dev/%' or path LIKE '\Windows\%';`)
		assert.Greater(t, len(rows), 1)
		seen := map[string]bool{}
		for _, r := range rows {
			assert.False(t, seen[r.Value("path")], "duplicate %s", r.Value("path"))
			seen[r.Value("path")] = true
		}
		assert.True(t, seen["/etc/"])
		assert.True(t, seen["/dev/null"])
	})

	t.Run("unconstrained file table is empty", func(t *testing.T) {
		rows := execute(t, e, "select count(*) as cnt from file")
		require.Len(t, rows, 1)
		assert.Equal(t, "0", rows[0].Value("cnt"))
	})
}

const (
	haxorMD5    = "2adfc0fd337a144cb2f8abd7cb0bf98e"
	haxorSHA1   = "21bd89f4580ef635e87f655fab5807a01e0ff2e9"
	haxorSHA256 = "6f1c16ac918f64721d14ff4bb3c51fe25ffde92f795ce6dbeb45722ce9d6e05c"
	noobMD5     = "e1cd6c58b0d4d9d7bcbfc0ec2b55ce94"
)

func hashQuery(path string) string {
	return fmt.Sprintf("select md5, sha1, sha256 from hash where path='%s'", path)
}

func TestEngine_Hash(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "hostql_hash_test.txt")
	cache := hashcache.New(true)
	e := systemEngine(t, cache)

	t.Run("hashes are correct", func(t *testing.T) {
		require.NoError(t, os.WriteFile(fname, []byte("31337 hax0r"), 0o600))
		rows := execute(t, e, hashQuery(fname))
		require.Len(t, rows, 1)
		assert.Equal(t, haxorMD5, rows[0].Value("md5"))
		assert.Equal(t, haxorSHA1, rows[0].Value("sha1"))
		assert.Equal(t, haxorSHA256, rows[0].Value("sha256"))
	})

	t.Run("cache works", func(t *testing.T) {
		cache.Purge()
		var lastMtime time.Time
		for i, content := range []string{"31337 hax0r", "random n00b"} {
			require.NoError(t, os.WriteFile(fname, []byte(content), 0o600))
			if i == 0 {
				fi, err := os.Stat(fname)
				require.NoError(t, err)
				lastMtime = fi.ModTime()
			} else {
				require.NoError(t, os.Chtimes(fname, lastMtime, lastMtime))
			}
			rows := execute(t, e, hashQuery(fname))
			require.Len(t, rows, 1)
			assert.Equal(t, haxorMD5, rows[0].Value("md5"))
		}
	})

	t.Run("cache updates", func(t *testing.T) {
		require.NoError(t, os.WriteFile(fname, []byte("31337 hax0r"), 0o600))
		require.Len(t, execute(t, e, hashQuery(fname)), 1)

		require.NoError(t, os.WriteFile(fname, []byte("random n00b"), 0o600))
		past := time.Now().Add(-time.Hour)
		require.NoError(t, os.Chtimes(fname, past, past))
		rows := execute(t, e, hashQuery(fname))
		require.Len(t, rows, 1)
		assert.NotEqual(t, haxorMD5, rows[0].Value("md5"))
		assert.Equal(t, noobMD5, rows[0].Value("md5"))
	})

	t.Run("hash of directory listing", func(t *testing.T) {
		rows := execute(t, e, fmt.Sprintf("select path, md5 from hash where directory='%s'", filepath.Dir(fname)))
		require.Len(t, rows, 1)
		assert.Equal(t, fname, rows[0].Value("path"))
	})

	t.Run("vanished file", func(t *testing.T) {
		rows := execute(t, e, hashQuery(filepath.Join(filepath.Dir(fname), "no-such-file")))
		assert.Empty(t, rows)
	})
}

func TestEngine_Pushdown(t *testing.T) {
	pm := &mocks.ProcessCollectorMock{
		PidsFunc: func() ([]int32, error) { return []int32{1, 2, 3}, nil },
		ProcessFunc: func(pid int32) (collector.Process, error) {
			if pid > 3 {
				return collector.Process{}, collector.ErrNotFound
			}
			return collector.Process{Pid: pid, Name: fmt.Sprintf("p%d", pid), Parent: 1}, nil
		},
	}
	e := newEngine(t, &tables.Processes{Collector: pm})

	rows := execute(t, e, "select name from processes where pid = 2")
	require.Len(t, rows, 1)
	assert.Equal(t, "p2", rows[0].Value("name"))
	assert.Empty(t, pm.PidsCalls(), "no enumeration")
	assert.Len(t, pm.ProcessCalls(), 1)

	rows = execute(t, e, "select name from processes where pid in (3, 1, 7) order by pid")
	require.Len(t, rows, 2)
	assert.Equal(t, "p1", rows[0].Value("name"))
	assert.Equal(t, "p3", rows[1].Value("name"))
	assert.Empty(t, pm.PidsCalls(), "no enumeration for in")

	seen := len(pm.ProcessCalls())
	rows = execute(t, e, "select pid from processes where pid > 1 order by pid")
	require.Len(t, rows, 2)
	assert.Equal(t, "2", rows[0].Value("pid"))
	assert.Equal(t, "3", rows[1].Value("pid"))
	assert.Len(t, pm.PidsCalls(), 1, "range enumerates pids")
	calls := pm.ProcessCalls()[seen:]
	require.Len(t, calls, 2, "only pids in range collected")
	assert.ElementsMatch(t, []int32{2, 3}, []int32{calls[0].Pid, calls[1].Pid})

	rows = execute(t, e, "select count(*) as cnt from processes p1 join processes p2 on p1.parent = p2.pid")
	require.Len(t, rows, 1)
	assert.Equal(t, "3", rows[0].Value("cnt"))
}

func TestEngine_JoinPropagation(t *testing.T) {
	left := table.Func{TableName: "l", TableSchema: table.Schema{{Name: "k"}, {Name: "lv"}},
		Gen: func(table.Request) ([]table.Row, error) {
			return []table.Row{
				table.NewRow([]string{"k", "lv"}, []string{"a", "1"}),
				table.NewRow([]string{"k", "lv"}, []string{"b", "2"}),
				table.NewRow([]string{"k", "lv"}, []string{"c", "3"}),
			}, nil
		}}

	var lock sync.Mutex
	var calls []string
	rightSchema := table.Schema{{Name: "k", Required: true, Index: true}, {Name: "rv"}}
	right := table.Func{TableName: "r", TableSchema: rightSchema, Gen: func(req table.Request) ([]table.Row, error) {
		lock.Lock()
		calls = append(calls, req.Constraints.String())
		lock.Unlock()
		var res []table.Row
		for _, k := range req.Constraints.Get("k").Equals() {
			if k == "c" {
				continue
			}
			res = append(res, table.NewRow([]string{"k", "rv"}, []string{k, "r-" + k}))
		}
		return res, nil
	}}
	e := newEngine(t, left, right)

	rows := execute(t, e, "select k, lv, rv from l join r using (k) order by k")
	require.Len(t, rows, 2)
	assert.Equal(t, "r-a", rows[0].Value("rv"))
	assert.Equal(t, "r-b", rows[1].Value("rv"))
	assert.ElementsMatch(t, []string{"k = a", "k = b", "k = c"}, calls, "right side is never scanned unconstrained")

	calls = nil
	rows = execute(t, e, "select k, lv, rv from l left join r using (k) order by k")
	require.Len(t, rows, 3)
	assert.Equal(t, "", rows[2].Value("rv"), "null extended")
	assert.Equal(t, "c", rows[2].Value("k"))
	assert.NotContains(t, calls, "")

	calls = nil
	rows = execute(t, e, "select * from l join r using (k) where lv = 'nope'")
	assert.Empty(t, rows)
	assert.Empty(t, calls, "no left rows, right never invoked")
}

func TestEngine_Errors(t *testing.T) {
	failing := table.Func{TableName: "failing", TableSchema: table.Schema{{Name: "a"}},
		Gen: func(table.Request) ([]table.Row, error) { return nil, errors.New("collector exploded") }}
	e := newEngine(t, failing, &tables.File{})

	tbl := []struct {
		name, query, msg string
	}{
		{"syntax", "selec * from file", "syntax error"},
		{"unknown table", "select * from nope", "no such table"},
		{"unknown column", "select blah from file", "no such column"},
		{"runtime", "select * from failing", "collector exploded"},
	}
	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.Execute(context.Background(), tt.query)
			require.Error(t, err)
			assert.Nil(t, res)
			var qe *QueryError
			require.ErrorAs(t, err, &qe)
			assert.Equal(t, tt.query, qe.SQL)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	t.Run("no partial rows", func(t *testing.T) {
		res, err := e.Execute(context.Background(), "select 1 as x union all select a from failing")
		require.Error(t, err)
		assert.Nil(t, res)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := e.Execute(ctx, "select 1")
		require.Error(t, err)
	})
}

func TestEngine_Query(t *testing.T) {
	e := newEngine(t, &tables.File{})
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("f%d.txt", i)), []byte("x"), 0o600))
	}
	q := fmt.Sprintf("select filename, size from file where directory = '%s' order by filename", dir)

	var names []string
	err := e.Query(context.Background(), q, func(r table.Row) error {
		names = append(names, r.Value("filename"))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"f0.txt", "f1.txt", "f2.txt", "f3.txt", "f4.txt"}, names)

	stop := errors.New("enough")
	count := 0
	err = e.Query(context.Background(), q, func(table.Row) error {
		count++
		if count == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, count)

	res, err := e.Execute(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"filename", "size"}, res.Columns)
	assert.Len(t, res.Rows, 5)
	assert.Equal(t, "1", res.Rows[0].Value("size"))

	res, err = e.Execute(context.Background(), "select 1.5 as f, null as n, x'41' as b, 7 as i")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, map[string]string{"f": "1.5", "n": "", "b": "A", "i": "7"}, res.Rows[0].Map())
}

// gate makes a table which rows are produced only when n scans of it are in progress at the same time
func gate(n int32) table.Plugin {
	var arrived int32
	var mu sync.Mutex
	all := make(chan struct{})
	return table.Func{TableName: "gate", TableSchema: table.Schema{{Name: "v"}}, Gen: func(table.Request) ([]table.Row, error) {
		mu.Lock()
		arrived++
		if arrived == n {
			close(all)
		}
		mu.Unlock()
		select {
		case <-all:
			return []table.Row{table.NewRow([]string{"v"}, []string{"ok"})}, nil
		case <-time.After(10 * time.Second):
			return nil, errors.New("not all scans arrived")
		}
	}}
}

func TestEngine_Concurrent(t *testing.T) {
	t.Run("overlapping connections", func(t *testing.T) {
		reg, err := registry.New(gate(4))
		require.NoError(t, err)
		e, err := New(reg, WithMaxConns(4))
		require.NoError(t, err)
		defer e.Close()

		// all four queries are inside the table scan at once, each on its own connection
		wg := syncs.NewErrSizedGroup(4, syncs.Context(context.Background()))
		for i := 0; i < 4; i++ {
			wg.Go(func() error {
				res, err := e.Execute(context.Background(), "select v from gate")
				if err != nil {
					return err
				}
				if len(res.Rows) != 1 || res.Rows[0].Value("v") != "ok" {
					return fmt.Errorf("unexpected result %+v", res.Rows)
				}
				return nil
			})
		}
		require.NoError(t, wg.Wait())
		assert.Len(t, e.idle, 4)

		// opened connections are reused
		for i := 0; i < 10; i++ {
			execute(t, e, "select count(*) from gate")
		}
		assert.Len(t, e.idle, 4)
	})

	t.Run("file hash", func(t *testing.T) {
		fname := filepath.Join(t.TempDir(), "data.txt")
		require.NoError(t, os.WriteFile(fname, []byte("31337 hax0r"), 0o600))
		e := newEngine(t, &tables.Hash{Cache: hashcache.New(true)}, &tables.File{})

		wg := syncs.NewErrSizedGroup(8, syncs.Context(context.Background()))
		for i := 0; i < 50; i++ {
			wg.Go(func() error {
				res, err := e.Execute(context.Background(), fmt.Sprintf("select md5, size from file join hash using (path) where path = '%s'", fname))
				if err != nil {
					return err
				}
				if len(res.Rows) != 1 || res.Rows[0].Value("md5") != haxorMD5 {
					return fmt.Errorf("unexpected result %+v", res.Rows)
				}
				return nil
			})
		}
		require.NoError(t, wg.Wait())
	})

	t.Run("engines side by side", func(t *testing.T) {
		mk := func(val string) table.Plugin {
			return table.Func{TableName: "t", TableSchema: table.Schema{{Name: "v"}}, Gen: func(table.Request) ([]table.Row, error) {
				return []table.Row{table.NewRow([]string{"v"}, []string{val})}, nil
			}}
		}
		engines := []*Engine{newEngine(t, mk("0")), newEngine(t, mk("1")), newEngine(t, mk("2"))}
		wg := syncs.NewErrSizedGroup(12, syncs.Context(context.Background()))
		for i := 0; i < 60; i++ {
			idx := i % len(engines)
			wg.Go(func() error {
				res, err := engines[idx].Execute(context.Background(), "select v from t")
				if err != nil {
					return err
				}
				if len(res.Rows) != 1 || res.Rows[0].Value("v") != strconv.Itoa(idx) {
					return fmt.Errorf("engine %d, unexpected result %+v", idx, res.Rows)
				}
				return nil
			})
		}
		require.NoError(t, wg.Wait())
	})

	t.Run("single connection", func(t *testing.T) {
		reg, err := registry.New(gate(1))
		require.NoError(t, err)
		e, err := New(reg, WithMaxConns(1))
		require.NoError(t, err)
		defer e.Close()

		wg := syncs.NewErrSizedGroup(4, syncs.Context(context.Background()))
		for i := 0; i < 8; i++ {
			wg.Go(func() error {
				_, err := e.Execute(context.Background(), "select v from gate")
				return err
			})
		}
		require.NoError(t, wg.Wait())
		assert.Len(t, e.idle, 1)
	})
}

func TestEngine_Sessions(t *testing.T) {
	e := newEngine(t, table.Func{TableName: "t", TableSchema: table.Schema{{Name: "v"}}, Gen: func(table.Request) ([]table.Row, error) {
		return []table.Row{table.NewRow([]string{"v"}, []string{"x"})}, nil
	}})

	// dropped connection replaced by a new one with its own module
	s, err := e.acquire(context.Background())
	require.NoError(t, err)
	first := s.module
	e.release(s, true)
	assert.Empty(t, e.idle)
	rows := execute(t, e, "select v from t")
	require.Len(t, rows, 1)
	s, err = e.acquire(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first, s.module)
	e.release(s, false)

	// waiting for a busy connection respects the context
	small, err := New(e.Registry(), WithMaxConns(1))
	require.NoError(t, err)
	held, err := small.acquire(context.Background())
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = small.Execute(ctx, "select v from t")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	small.release(held, false)
	assert.Len(t, execute(t, small, "select v from t"), 1)

	require.NoError(t, small.Close())
	require.NoError(t, small.Close())
	_, err = small.Execute(context.Background(), "select v from t")
	require.ErrorIs(t, err, ErrClosed)
}

func TestEngine_Isolated(t *testing.T) {
	mk := func(name, val string) table.Plugin {
		return table.Func{TableName: name, TableSchema: table.Schema{{Name: "v"}}, Gen: func(table.Request) ([]table.Row, error) {
			return []table.Row{table.NewRow([]string{"v"}, []string{val})}, nil
		}}
	}
	e1 := newEngine(t, mk("t", "one"))
	e2 := newEngine(t, mk("t", "two"), mk("extra", "x"))

	rows := execute(t, e1, "select v from t")
	require.Len(t, rows, 1)
	assert.Equal(t, "one", rows[0].Value("v"))

	rows = execute(t, e2, "select v from t")
	require.Len(t, rows, 1)
	assert.Equal(t, "two", rows[0].Value("v"))

	_, err := e1.Execute(context.Background(), "select * from extra")
	assert.Error(t, err)
	assert.Equal(t, []string{"t"}, e1.Registry().Names())
}
