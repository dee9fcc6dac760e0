// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package hwinfo

const sysRoot = ""

// kernelRelease defers to the gopsutil host report.
func kernelRelease() string { return "" }

func diskKind(string) DiskKind { return DiskUnknown }

// countedDisk accepts every device gopsutil reports.
func countedDisk(string) bool { return true }
