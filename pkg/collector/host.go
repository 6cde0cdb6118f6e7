package collector

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// Host collects host and OS information with gopsutil, enriched by os-release and DMI data where present
type Host struct {
	OSReleaseFile string
	DMIDir        string
}

// NewHost makes collector with standard locations of os-release and DMI data
func NewHost() *Host {
	return &Host{OSReleaseFile: "/etc/os-release", DMIDir: "/sys/class/dmi/id"}
}

// OSVersion returns installed OS description. os-release values take priority over gopsutil platform info.
func (h *Host) OSVersion() (OSVersion, error) {
	info, err := host.Info()
	if err != nil {
		return OSVersion{}, fmt.Errorf("can't get host info: %w", err)
	}
	res := OSVersion{
		Name:      info.Platform,
		Version:   info.PlatformVersion,
		VersionID: info.PlatformVersion,
		Build:     info.KernelVersion,
		Platform:  info.Platform,
		Arch:      info.KernelArch,
	}
	if res.PlatformLike = info.PlatformFamily; res.PlatformLike == "" {
		res.PlatformLike = info.OS
	}

	rel, err := readKeyValues(h.OSReleaseFile)
	if err != nil {
		log.Printf("[DEBUG] no os-release, %v", err)
		return res, nil
	}
	set := func(dst *string, key string) {
		if v := rel[key]; v != "" {
			*dst = v
		}
	}
	set(&res.Name, "NAME")
	set(&res.Version, "VERSION")
	set(&res.VersionID, "VERSION_ID")
	set(&res.Platform, "ID")
	set(&res.PlatformLike, "ID_LIKE")
	set(&res.Codename, "VERSION_CODENAME")
	set(&res.Build, "BUILD_ID")
	return res, nil
}

// SystemInfo returns host naming, cpu and memory information. Pieces failing to load are left empty.
func (h *Host) SystemInfo() (SystemInfo, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return SystemInfo{}, fmt.Errorf("can't get hostname: %w", err)
	}
	res := SystemInfo{Hostname: hostname, ComputerName: hostname, CPUType: runtime.GOARCH}
	res.LocalHostname, _, _ = strings.Cut(hostname, ".")

	if id, err := host.HostID(); err == nil {
		res.UUID = id
	} else {
		log.Printf("[DEBUG] can't get host id, %v", err)
	}
	if info, err := host.Info(); err == nil && info.KernelArch != "" {
		res.CPUType = info.KernelArch
	}
	if ci, err := cpu.Info(); err == nil && len(ci) > 0 {
		res.CPUBrand = strings.TrimSpace(ci[0].ModelName)
	}
	if n, err := cpu.Counts(false); err == nil {
		res.CPUPhysicalCores = n
	}
	if n, err := cpu.Counts(true); err == nil {
		res.CPULogicalCores = n
	}
	if vm, err := mem.VirtualMemory(); err == nil && vm != nil {
		res.PhysicalMemory = vm.Total
	}
	res.HardwareVendor = h.dmi("sys_vendor")
	res.HardwareModel = h.dmi("product_name")
	return res, nil
}

// Uptime returns seconds since boot
func (h *Host) Uptime() (uint64, error) {
	up, err := host.Uptime()
	if err != nil {
		return 0, fmt.Errorf("can't get uptime: %w", err)
	}
	return up, nil
}

// HostID returns unique id of the host
func (h *Host) HostID() (string, error) {
	id, err := host.HostID()
	if err != nil {
		return "", fmt.Errorf("can't get host id: %w", err)
	}
	return id, nil
}

func (h *Host) dmi(name string) string {
	if h.DMIDir == "" {
		return ""
	}
	data, err := os.ReadFile(h.DMIDir + "/" + name) // nolint
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// readKeyValues parses KEY=value lines of os-release style files, values may be quoted
func readKeyValues(fname string) (map[string]string, error) {
	fh, err := os.Open(fname) // nolint
	if err != nil {
		return nil, err
	}
	defer fh.Close() // nolint

	res := map[string]string{}
	scanner := bufio.NewScanner(fh)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		res[strings.TrimSpace(k)] = strings.Trim(strings.TrimSpace(v), `"'`)
	}
	return res, scanner.Err()
}
