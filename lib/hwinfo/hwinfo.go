// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// DiskKind classifies the primary disk.
type DiskKind string

const (
	DiskSSD     DiskKind = "ssd"
	DiskHDD     DiskKind = "hdd"
	DiskUnknown DiskKind = "unknown"
)

// SystemInfo is the static description of the host included in every
// report. None of these fields are anonymized.
type SystemInfo struct {
	OS            string   `json:"os"`
	OSName        string   `json:"os_name"`
	OSVersion     string   `json:"os_version"`
	KernelVersion string   `json:"kernel_version"`
	CPUArch       string   `json:"cpu_arch"`
	CPUBrand      string   `json:"cpu_brand"`
	CPUCores      int      `json:"cpu_cores"`
	RAMTotalMB    uint64   `json:"ram_total_mb"`
	DiskType      DiskKind `json:"disk_type"`
}

const bytesPerMB = 1024 * 1024

// Probe collects the static inventory of the running host.
func Probe(ctx context.Context) SystemInfo {
	info := SystemInfo{
		OS:       runtime.GOOS,
		OSName:   runtime.GOOS,
		CPUArch:  runtime.GOARCH,
		CPUCores: runtime.NumCPU(),
		DiskType: diskKind(sysRoot),
	}

	if hostInfo, err := host.InfoWithContext(ctx); err == nil {
		if hostInfo.Platform != "" {
			info.OSName = hostInfo.Platform
		}
		info.OSVersion = hostInfo.PlatformVersion
		info.KernelVersion = hostInfo.KernelVersion
	}
	if release := kernelRelease(); release != "" {
		info.KernelVersion = release
	}

	if processors, err := cpu.InfoWithContext(ctx); err == nil && len(processors) > 0 {
		info.CPUBrand = processors[0].ModelName
	}
	if memory, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.RAMTotalMB = memory.Total / bytesPerMB
	}

	return info
}
