package collector

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	log "github.com/sirupsen/logrus"
)

type CPUInfo struct {
	PhysicalCores int
	LogicalCores  int
	ModelName     string
}

type MemoryInfo struct {
	Total       uint64
	Available   uint64
	UsedPercent float64
}

type DiskInfo struct {
	Path        string
	Free        uint64
	UsedPercent float64
}

type HostInfo struct {
	Hostname        string
	OS              string
	Platform        string
	PlatformVersion string
}

type LoadInfo struct {
	Load1  float64
	Load5  float64
	Load15 float64
}

// Snapshot describes the machine a sweep runs on. It is logged at the start
// of a batch and sizes the default worker pool.
type Snapshot struct {
	CPUInfo    CPUInfo
	MemoryInfo MemoryInfo
	DiskInfo   DiskInfo
	HostInfo   HostInfo
	LoadInfo   LoadInfo
}

func GetCPUInfo() (CPUInfo, error) {
	logical, err := cpu.Counts(true)
	if err != nil {
		return CPUInfo{}, fmt.Errorf("failed to get logical CPU count: %v", err)
	}
	physical, err := cpu.Counts(false)
	if err != nil {
		physical = logical
	}

	var modelName string
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		modelName = infos[0].ModelName
	}

	return CPUInfo{
		PhysicalCores: physical,
		LogicalCores:  logical,
		ModelName:     modelName,
	}, nil
}

func GetMemoryInfo() (MemoryInfo, error) {
	v, err := mem.VirtualMemory()
	if err != nil {
		return MemoryInfo{}, fmt.Errorf("failed to get memory info: %v", err)
	}

	return MemoryInfo{
		Total:       v.Total,
		Available:   v.Available,
		UsedPercent: v.UsedPercent,
	}, nil
}

// GetDiskInfo reports the filesystem holding path, normally the work directory.
func GetDiskInfo(path string) (DiskInfo, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return DiskInfo{}, fmt.Errorf("failed to get disk usage of %s: %v", path, err)
	}

	return DiskInfo{
		Path:        path,
		Free:        usage.Free,
		UsedPercent: usage.UsedPercent,
	}, nil
}

func GetHostInfo() (HostInfo, error) {
	info, err := host.Info()
	if err != nil {
		return HostInfo{}, fmt.Errorf("failed to get host info: %v", err)
	}

	return HostInfo{
		Hostname:        info.Hostname,
		OS:              info.OS,
		Platform:        info.Platform,
		PlatformVersion: info.PlatformVersion,
	}, nil
}

func GetLoadInfo() (LoadInfo, error) {
	avg, err := load.Avg()
	if err != nil {
		return LoadInfo{}, fmt.Errorf("failed to get system load: %v", err)
	}

	return LoadInfo{
		Load1:  avg.Load1,
		Load5:  avg.Load5,
		Load15: avg.Load15,
	}, nil
}

// CollectSnapshot gathers what it can. CPU facts are required, the rest is
// logged and left zero when the platform does not expose it.
func CollectSnapshot(workDir string) (Snapshot, error) {
	var snap Snapshot
	var err error

	if snap.CPUInfo, err = GetCPUInfo(); err != nil {
		return Snapshot{}, err
	}
	if snap.MemoryInfo, err = GetMemoryInfo(); err != nil {
		log.Warningf("collector: %v", err)
	}
	if snap.DiskInfo, err = GetDiskInfo(workDir); err != nil {
		log.Warningf("collector: %v", err)
	}
	if snap.HostInfo, err = GetHostInfo(); err != nil {
		log.Warningf("collector: %v", err)
	}
	if snap.LoadInfo, err = GetLoadInfo(); err != nil {
		log.Warningf("collector: %v", err)
	}
	return snap, nil
}

// DefaultParallelism is one simulator per logical CPU.
func DefaultParallelism() int {
	cpuInfo, err := GetCPUInfo()
	if err != nil || cpuInfo.LogicalCores <= 0 {
		log.Warningf("collector: falling back to runtime CPU count, err=%v", err)
		return runtime.NumCPU()
	}
	return cpuInfo.LogicalCores
}

func (s Snapshot) LogSummary() {
	log.Infof("host=%s platform=%s %s cpus=%d/%d model=%q",
		s.HostInfo.Hostname, s.HostInfo.Platform, s.HostInfo.PlatformVersion,
		s.CPUInfo.PhysicalCores, s.CPUInfo.LogicalCores, s.CPUInfo.ModelName)
	log.Infof("memory available=%dMB/%dMB, load=%.2f %.2f %.2f, disk free=%dMB at %s",
		s.MemoryInfo.Available>>20, s.MemoryInfo.Total>>20,
		s.LoadInfo.Load1, s.LoadInfo.Load5, s.LoadInfo.Load15,
		s.DiskInfo.Free>>20, s.DiskInfo.Path)
}
