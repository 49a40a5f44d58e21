package system

import (
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemStats represents host resource statistics
type SystemStats struct {
	CPU       CPUStats    `json:"cpu"`
	Memory    MemoryStats `json:"memory"`
	Disk      DiskStats   `json:"disk"`
	Timestamp time.Time   `json:"timestamp"`
}

// CPUStats represents CPU usage statistics
type CPUStats struct {
	UsagePercent float64 `json:"usage_percent"`
	Cores        int     `json:"cores"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Total        uint64  `json:"total_bytes"`
	Used         uint64  `json:"used_bytes"`
	Available    uint64  `json:"available_bytes"`
	UsagePercent float64 `json:"usage_percent"`
}

// DiskStats represents disk usage statistics
type DiskStats struct {
	Total        uint64  `json:"total_bytes"`
	Used         uint64  `json:"used_bytes"`
	Free         uint64  `json:"free_bytes"`
	UsagePercent float64 `json:"usage_percent"`
	Path         string  `json:"path"`
}

// GetStats collects current host statistics. Collection failures for a
// single subsystem leave its section zeroed rather than failing the call.
func GetStats(dataPath string) *SystemStats {
	stats := &SystemStats{Timestamp: time.Now()}

	if percentages, err := cpu.Percent(0, false); err == nil && len(percentages) > 0 {
		stats.CPU.UsagePercent = percentages[0]
	}
	if cores, err := cpu.Counts(true); err == nil {
		stats.CPU.Cores = cores
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats.Memory = MemoryStats{
			Total:        vm.Total,
			Used:         vm.Used,
			Available:    vm.Available,
			UsagePercent: vm.UsedPercent,
		}
	}

	if dataPath == "" {
		dataPath = "/"
	}
	if usage, err := disk.Usage(dataPath); err == nil {
		stats.Disk = DiskStats{
			Total:        usage.Total,
			Used:         usage.Used,
			Free:         usage.Free,
			UsagePercent: usage.UsedPercent,
			Path:         dataPath,
		}
	}

	return stats
}
