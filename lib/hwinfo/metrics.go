// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// CPUReading captures cumulative CPU time across all cores, in
// seconds, for delta computation.
//
// busy = user + nice + system + irq + softirq + steal
// idle = idle + iowait
//
// guest and guest_nice are already accounted in user and nice, so they
// are not added again.
type CPUReading struct {
	Busy float64
	Idle float64
}

// CPUPercent computes utilization between two readings. Returns 0 when
// no time has passed or the counters went backwards (a reset).
func CPUPercent(previous, current CPUReading) float64 {
	busyDelta := current.Busy - previous.Busy
	idleDelta := current.Idle - previous.Idle
	if busyDelta < 0 || idleDelta < 0 {
		return 0
	}
	totalDelta := busyDelta + idleDelta
	if totalDelta <= 0 {
		return 0
	}
	return busyDelta / totalDelta * 100
}

// Reading is one sample of host counters. CPU and disk values are
// cumulative since boot; memory values are instantaneous, in bytes.
type Reading struct {
	CPU         CPUReading
	MemoryUsed  uint64
	MemoryTotal uint64
	DiskRead    uint64
	DiskWrite   uint64
}

// Delta returns the growth of a cumulative counter, or 0 if the counter
// was reset between readings.
func Delta(previous, current uint64) uint64 {
	if current < previous {
		return 0
	}
	return current - previous
}

// Source produces host readings.
type Source interface {
	Read(ctx context.Context) (Reading, error)
}

// HostSource reads the running host through gopsutil.
type HostSource struct{}

// NewHostSource returns a Source for the running host.
func NewHostSource() *HostSource { return &HostSource{} }

// Read samples CPU, memory, and disk counters. CPU and memory are
// required; hosts that expose no disk statistics report zero I/O.
func (*HostSource) Read(ctx context.Context) (Reading, error) {
	var reading Reading

	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return Reading{}, fmt.Errorf("reading CPU times: %w", err)
	}
	if len(times) == 0 {
		return Reading{}, fmt.Errorf("reading CPU times: no aggregate entry")
	}
	reading.CPU = cpuReadingFrom(times[0])

	memory, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Reading{}, fmt.Errorf("reading memory: %w", err)
	}
	reading.MemoryUsed = memory.Used
	reading.MemoryTotal = memory.Total

	if counters, err := disk.IOCountersWithContext(ctx); err == nil {
		reading.DiskRead, reading.DiskWrite = sumDiskCounters(counters, countedDisk)
	}

	return reading, nil
}

func cpuReadingFrom(times cpu.TimesStat) CPUReading {
	return CPUReading{
		Busy: times.User + times.Nice + times.System + times.Irq + times.Softirq + times.Steal,
		Idle: times.Idle + times.Iowait,
	}
}

// sumDiskCounters totals read and write bytes over the devices that
// include accepts.
func sumDiskCounters(counters map[string]disk.IOCountersStat, include func(name string) bool) (read, write uint64) {
	for name, counter := range counters {
		if !include(name) {
			continue
		}
		read += counter.ReadBytes
		write += counter.WriteBytes
	}
	return read, write
}
