//go:build windows

package admin

import (
	"syscall"
	"unsafe"
)

var getDiskFreeSpaceEx = syscall.NewLazyDLL("kernel32.dll").NewProc("GetDiskFreeSpaceExW")

func diskUsage(path string) DiskStats {
	ptr, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return DiskStats{Path: path}
	}

	var available, total, totalFree int64
	ok, _, _ := getDiskFreeSpaceEx.Call(
		uintptr(unsafe.Pointer(ptr)),
		uintptr(unsafe.Pointer(&available)),
		uintptr(unsafe.Pointer(&total)),
		uintptr(unsafe.Pointer(&totalFree)),
	)
	if ok == 0 {
		return DiskStats{Path: path}
	}
	return DiskStats{Free: uint64(available), Size: uint64(total), Path: path}
}
