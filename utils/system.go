package utils

import (
	"context"
	"runtime"

	"moddingway/logging"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemInfo is a snapshot of the host the bot runs on.
type SystemInfo struct {
	Platform        string  `json:"platform"`
	PlatformVersion string  `json:"platform_version"`
	KernelVersion   string  `json:"kernel_version"`
	GoVersion       string  `json:"go_version"`
	CPUCount        int     `json:"cpu_count"`
	CPUPercent      float64 `json:"cpu_percent"`
	MemoryUsedMB    uint64  `json:"memory_used_mb"`
	MemoryTotalMB   uint64  `json:"memory_total_mb"`
	MemoryPercent   float64 `json:"memory_percent"`
	Goroutines      int     `json:"goroutines"`
	HostUptimeSec   uint64  `json:"host_uptime_seconds"`
}

// CollectSystemInfo gathers host statistics. Probes that fail leave their fields zero.
func CollectSystemInfo(ctx context.Context) SystemInfo {
	info := SystemInfo{
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
	}

	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		info.CPUCount = n
	} else {
		logging.Debug("cpu count unavailable", "error", err)
	}
	if pct, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pct) > 0 {
		info.CPUPercent = pct[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.MemoryUsedMB = vm.Used / 1024 / 1024
		info.MemoryTotalMB = vm.Total / 1024 / 1024
		info.MemoryPercent = vm.UsedPercent
	}
	if h, err := host.InfoWithContext(ctx); err == nil {
		info.Platform = h.Platform
		info.PlatformVersion = h.PlatformVersion
		info.KernelVersion = h.KernelVersion
		info.HostUptimeSec = h.Uptime
	}
	return info
}
