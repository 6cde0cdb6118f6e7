package tables

import (
	"log"
	"strconv"
	"strings"

	"github.com/Masterminds/semver"

	"github.com/umputun/hostql/pkg/table"
)

// OSVersion is os_version table, always a single row
type OSVersion struct {
	Host HostCollector
}

var osVersionSchema = table.Schema{
	{Name: "name"},
	{Name: "version"},
	{Name: "major", Type: table.Integer},
	{Name: "minor", Type: table.Integer},
	{Name: "patch", Type: table.Integer},
	{Name: "build"},
	{Name: "platform"},
	{Name: "platform_like"},
	{Name: "codename"},
	{Name: "arch"},
}

// Name of the table
func (t *OSVersion) Name() string { return "os_version" }

// Schema of the table
func (t *OSVersion) Schema() table.Schema { return osVersionSchema }

// Generate returns the single row describing the OS
func (t *OSVersion) Generate(table.Request) ([]table.Row, error) {
	row := osVersionSchema.NewRow()
	v, err := t.Host.OSVersion()
	if err != nil {
		log.Printf("[WARN] can't get os version, %v", err)
		return []table.Row{row}, nil
	}
	row.Set("name", v.Name)
	row.Set("version", v.Version)
	row.Set("build", v.Build)
	row.Set("platform", v.Platform)
	row.Set("platform_like", v.PlatformLike)
	row.Set("codename", v.Codename)
	row.Set("arch", v.Arch)

	major, minor, patch := versionParts(v.VersionID, v.Version)
	row.SetInt("major", major)
	row.SetInt("minor", minor)
	row.SetInt("patch", patch)
	return []table.Row{row}, nil
}

// versionParts extracts major, minor and patch from the first candidate looking like a version.
// Semantic versions are parsed as is, anything else by its leading dotted numbers, like "10.0.19045 Build 19045".
func versionParts(candidates ...string) (major, minor, patch int64) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if sv, err := semver.NewVersion(c); err == nil {
			return sv.Major(), sv.Minor(), sv.Patch()
		}
		lead := strings.FieldsFunc(c, func(r rune) bool { return r == ' ' || r == '(' || r == '-' || r == '_' })
		if len(lead) == 0 {
			continue
		}
		parts := strings.Split(lead[0], ".")
		nums := make([]int64, 3)
		ok := false
		for i := 0; i < len(parts) && i < 3; i++ {
			n, err := strconv.ParseInt(parts[i], 10, 64)
			if err != nil {
				break
			}
			nums[i], ok = n, true
		}
		if ok {
			return nums[0], nums[1], nums[2]
		}
	}
	return 0, 0, 0
}

// SystemInfo is system_info table, always a single row
type SystemInfo struct {
	Host HostCollector
}

var systemInfoSchema = table.Schema{
	{Name: "hostname"},
	{Name: "uuid"},
	{Name: "cpu_type"},
	{Name: "cpu_brand"},
	{Name: "cpu_physical_cores", Type: table.Integer},
	{Name: "cpu_logical_cores", Type: table.Integer},
	{Name: "physical_memory", Type: table.BigInt},
	{Name: "hardware_vendor"},
	{Name: "hardware_model"},
	{Name: "computer_name"},
	{Name: "local_hostname"},
}

// Name of the table
func (t *SystemInfo) Name() string { return "system_info" }

// Schema of the table
func (t *SystemInfo) Schema() table.Schema { return systemInfoSchema }

// Generate returns the single row describing the host
func (t *SystemInfo) Generate(table.Request) ([]table.Row, error) {
	row := systemInfoSchema.NewRow()
	si, err := t.Host.SystemInfo()
	if err != nil {
		log.Printf("[WARN] can't get system info, %v", err)
		return []table.Row{row}, nil
	}
	row.Set("hostname", si.Hostname)
	row.Set("uuid", si.UUID)
	row.Set("cpu_type", si.CPUType)
	row.Set("cpu_brand", si.CPUBrand)
	row.SetInt("cpu_physical_cores", int64(si.CPUPhysicalCores))
	row.SetInt("cpu_logical_cores", int64(si.CPULogicalCores))
	row.SetUint("physical_memory", si.PhysicalMemory)
	row.Set("hardware_vendor", si.HardwareVendor)
	row.Set("hardware_model", si.HardwareModel)
	row.Set("computer_name", si.ComputerName)
	row.Set("local_hostname", si.LocalHostname)
	return []table.Row{row}, nil
}

// Uptime is uptime table, a single row with time since boot
type Uptime struct {
	Host HostCollector
}

var uptimeSchema = table.Schema{
	{Name: "days", Type: table.Integer},
	{Name: "hours", Type: table.Integer},
	{Name: "minutes", Type: table.Integer},
	{Name: "seconds", Type: table.Integer},
	{Name: "total_seconds", Type: table.BigInt},
}

// Name of the table
func (t *Uptime) Name() string { return "uptime" }

// Schema of the table
func (t *Uptime) Schema() table.Schema { return uptimeSchema }

// Generate returns uptime split to days, hours, minutes and seconds. No rows if uptime is unknown.
func (t *Uptime) Generate(table.Request) ([]table.Row, error) {
	up, err := t.Host.Uptime()
	if err != nil {
		log.Printf("[WARN] %v", err)
		return nil, nil
	}
	row := uptimeSchema.NewRow()
	row.SetUint("days", up/86400)
	row.SetUint("hours", up%86400/3600)
	row.SetUint("minutes", up%3600/60)
	row.SetUint("seconds", up%60)
	row.SetUint("total_seconds", up)
	return []table.Row{row}, nil
}
