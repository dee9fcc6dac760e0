// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package hwinfo reads the host facts a diagnostics report needs.
//
// # Static inventory
//
// [Probe] returns a [SystemInfo]: operating system and version, kernel
// release, CPU architecture, brand and logical core count, total RAM,
// and whether the primary disk is solid state. It is captured once per
// export. Probe never fails; anything that cannot be determined is left
// at its zero value (or [DiskUnknown]). A container with no sysfs and
// no DMI is still a valid host.
//
// # Runtime readings
//
// [HostSource] implements [Source]: each Read returns cumulative CPU
// time, current memory use, and cumulative disk I/O bytes. Utilization
// is a delta between two readings ([CPUPercent], [Delta]); the sampler
// keeps the previous reading.
//
// Readings come from gopsutil on every platform. Linux additionally
// consults /sys/block to classify disks and to keep partitions and
// virtual devices out of the I/O totals.
package hwinfo
