package platform

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostInfo is a short description of the machine devrun runs on.
type HostInfo struct {
	Family          Family
	OS              string
	Platform        string
	PlatformVersion string
	KernelVersion   string
	Arch            string
	MemoryTotal     uint64
	MemoryUsed      uint64
}

// DescribeHost collects host details. Fields gopsutil cannot read stay empty.
func DescribeHost() HostInfo {
	info := HostInfo{
		Family: Detect(),
		OS:     runtime.GOOS,
		Arch:   runtime.GOARCH,
	}

	if h, err := host.Info(); err == nil {
		info.Platform = h.Platform
		info.PlatformVersion = h.PlatformVersion
		info.KernelVersion = h.KernelVersion
		if h.KernelArch != "" {
			info.Arch = h.KernelArch
		}
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemoryTotal = vm.Total
		info.MemoryUsed = vm.Used
	}

	return info
}
