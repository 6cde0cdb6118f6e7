package tables

import (
	"log"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/umputun/hostql/pkg/table"
)

// Instance describes the running hostql process for osquery_info
type Instance struct {
	ID          string // random id of this run, generated if empty
	Version     string
	ConfigHash  string
	ConfigValid bool
	StartTime   time.Time
}

// OsqueryInfo is osquery_info table, a single row about this process
type OsqueryInfo struct {
	Host     HostCollector
	Instance Instance

	once sync.Once
}

var osqueryInfoSchema = table.Schema{
	{Name: "pid", Type: table.Integer},
	{Name: "uuid"},
	{Name: "instance_id"},
	{Name: "version"},
	{Name: "config_hash"},
	{Name: "config_valid", Type: table.Integer},
	{Name: "extensions"},
	{Name: "build_platform"},
	{Name: "build_distro"},
	{Name: "start_time", Type: table.Integer},
	{Name: "watcher", Type: table.Integer},
}

// Name of the table
func (t *OsqueryInfo) Name() string { return "osquery_info" }

// Schema of the table
func (t *OsqueryInfo) Schema() table.Schema { return osqueryInfoSchema }

// Generate returns the single row describing the current process
func (t *OsqueryInfo) Generate(table.Request) ([]table.Row, error) {
	t.once.Do(func() {
		if t.Instance.ID == "" {
			t.Instance.ID = uuid.NewString()
		}
		if t.Instance.StartTime.IsZero() {
			t.Instance.StartTime = time.Now()
		}
	})

	row := osqueryInfoSchema.NewRow()
	row.SetInt("pid", int64(os.Getpid()))
	if id, err := t.Host.HostID(); err == nil {
		row.Set("uuid", id)
	} else {
		log.Printf("[DEBUG] %v", err)
	}
	row.Set("instance_id", t.Instance.ID)
	row.Set("version", t.Instance.Version)
	row.Set("config_hash", t.Instance.ConfigHash)
	row.SetBool("config_valid", t.Instance.ConfigValid)
	row.Set("extensions", "inactive")
	row.Set("build_platform", runtime.GOOS)
	row.Set("build_distro", runtime.Version())
	row.SetInt("start_time", t.Instance.StartTime.Unix())
	row.SetInt("watcher", -1)
	return []table.Row{row}, nil
}
