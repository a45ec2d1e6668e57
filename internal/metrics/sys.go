package metrics

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/dustin/go-humanize"
)

const mib = 1 << 20

// SysHealth is a snapshot of the running process, reported next to usage
// totals by the admin metrics command.
type SysHealth struct {
	AllocMB    uint64
	SysMB      uint64
	NumGC      uint32
	Goroutines int
	DataSize   string
}

// GetSysHealth reports process memory and the on-disk size of the
// database directory.
func GetSysHealth(dbPath string) SysHealth {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return SysHealth{
		AllocMB:    mem.Alloc / mib,
		SysMB:      mem.Sys / mib,
		NumGC:      mem.NumGC,
		Goroutines: runtime.NumGoroutine(),
		DataSize:   humanize.IBytes(dataDirBytes(filepath.Dir(dbPath))),
	}
}

// dataDirBytes sums regular files under root. Unreadable entries count as zero.
func dataDirBytes(root string) uint64 {
	var total uint64
	_ = fs.WalkDir(os.DirFS(root), ".", func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil && info.Mode().IsRegular() {
			total += uint64(info.Size())
		}
		return nil
	})
	return total
}
