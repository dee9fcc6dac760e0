// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

const sysRoot = "/sys"

// kernelRelease returns the release string from uname(2).
func kernelRelease() string {
	var utsname unix.Utsname
	if err := unix.Uname(&utsname); err != nil {
		return ""
	}
	return unix.ByteSliceToString(utsname.Release[:])
}

// diskKind classifies the first physical block device under
// root/block. Devices are visited in name order, so nvme0n1 is chosen
// over sda and sda over sdb.
func diskKind(root string) DiskKind {
	entries, err := os.ReadDir(filepath.Join(root, "block"))
	if err != nil {
		return DiskUnknown
	}
	for _, entry := range entries {
		if !physicalDisk(root, entry.Name()) {
			continue
		}
		switch ReadSysfsString(filepath.Join(root, "block", entry.Name(), "queue", "rotational")) {
		case "0":
			return DiskSSD
		case "1":
			return DiskHDD
		default:
			return DiskUnknown
		}
	}
	return DiskUnknown
}

// physicalDisk reports whether name is a whole block device backed by
// hardware. Partitions do not appear directly under /sys/block, and
// virtual devices (loop, dm, zram, md) have no "device" link.
func physicalDisk(root, name string) bool {
	_, err := os.Stat(filepath.Join(root, "block", name, "device"))
	return err == nil
}

func countedDisk(name string) bool {
	return physicalDisk(sysRoot, name)
}
