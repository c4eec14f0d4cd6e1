//go:build !linux && !darwin && !windows

package admin

func diskUsage(path string) DiskStats {
	return DiskStats{Path: path}
}
