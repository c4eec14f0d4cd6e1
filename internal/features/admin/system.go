package admin

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	defaultLogLines = 100
	minLogLines     = 10
	maxLogLines     = 1000
)

var startedAt = time.Now()

// DiskStats reports free and total bytes of the volume holding Path.
type DiskStats struct {
	Free uint64 `json:"free"`
	Size uint64 `json:"size"`
	Path string `json:"path"`
}

// MemoryStats is a subset of runtime.MemStats.
type MemoryStats struct {
	Sys       uint64 `json:"sys"`
	Alloc     uint64 `json:"alloc"`
	HeapInUse uint64 `json:"heapInUse"`
	NumGC     uint32 `json:"numGC"`
}

// PoolStats mirrors sql.DBStats for the JSON response.
type PoolStats struct {
	OpenConnections int   `json:"openConnections"`
	InUse           int   `json:"inUse"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"waitCount"`
}

// SystemStats describes the running process.
type SystemStats struct {
	Uptime     string      `json:"uptime"`
	GoVersion  string      `json:"goVersion"`
	NumCPU     int         `json:"numCPU"`
	Goroutines int         `json:"goroutines"`
	Memory     MemoryStats `json:"memory"`
	Disk       DiskStats   `json:"disk"`
	Database   *PoolStats  `json:"database,omitempty"`
}

// CollectSystemStats samples runtime, disk and connection pool figures.
func CollectSystemStats(db *gorm.DB) SystemStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	root := "/"
	if runtime.GOOS == "windows" {
		root = "C:"
	}

	stats := SystemStats{
		Uptime:     time.Since(startedAt).Round(time.Second).String(),
		GoVersion:  runtime.Version(),
		NumCPU:     runtime.NumCPU(),
		Goroutines: runtime.NumGoroutine(),
		Memory: MemoryStats{
			Sys:       m.Sys,
			Alloc:     m.Alloc,
			HeapInUse: m.HeapInuse,
			NumGC:     m.NumGC,
		},
		Disk: diskUsage(root),
	}

	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			s := sqlDB.Stats()
			stats.Database = &PoolStats{
				OpenConnections: s.OpenConnections,
				InUse:           s.InUse,
				Idle:            s.Idle,
				WaitCount:       s.WaitCount,
			}
		}
	}
	return stats
}

// LogTail is the end of one log file.
type LogTail struct {
	Type  string   `json:"type"`
	Lines int      `json:"lines"`
	Log   []string `json:"log"`
}

// TailLog returns the last n lines of <dir>/<logType>.log. logType is info or error;
// n is clamped to [10, 1000].
func TailLog(dir, logType string, n int) (LogTail, error) {
	if logType != "error" {
		logType = "info"
	}
	if n <= 0 {
		n = defaultLogLines
	}
	n = min(max(n, minLogLines), maxLogLines)

	file, err := os.Open(filepath.Join(dir, logType+".log"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return LogTail{}, ErrLogNotFound
		}
		return LogTail{}, err
	}
	defer file.Close()

	ring := make([]string, 0, n)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(ring) == n {
			ring = ring[1:]
		}
		ring = append(ring, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return LogTail{}, fmt.Errorf("scan %s log: %w", logType, err)
	}

	return LogTail{Type: logType, Lines: len(ring), Log: ring}, nil
}

// ClearLogs truncates every *.log file in dir and returns how many were cleared.
func ClearLogs(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, ErrLogNotFound
		}
		return 0, err
	}

	cleared := 0
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		if err := os.Truncate(filepath.Join(dir, entry.Name()), 0); err != nil {
			errs = append(errs, err)
			continue
		}
		cleared++
	}
	return cleared, errors.Join(errs...)
}
