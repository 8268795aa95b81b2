package detector

import (
	"strings"

	gopsproc "github.com/shirou/gopsutil/v4/process"
)

// Info carries live runtime attributes of a running server process, shown by
// inspect. All fields are best-effort snapshots.
type Info struct {
	PID        int     `json:"pid"`
	RSSBytes   uint64  `json:"rss_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
	NumThreads int32   `json:"num_threads"`
	Cmdline    string  `json:"cmdline"`
}

// ProcInfo collects runtime information for a live PID.
func ProcInfo(pid int) (*Info, error) {
	p, err := gopsproc.NewProcess(int32(pid))
	if err != nil {
		return nil, err
	}
	info := &Info{PID: pid}
	if mi, err := p.MemoryInfo(); err == nil && mi != nil {
		info.RSSBytes = mi.RSS
	}
	if cp, err := p.CPUPercent(); err == nil {
		info.CPUPercent = cp
	}
	if nt, err := p.NumThreads(); err == nil {
		info.NumThreads = nt
	}
	if args, err := p.CmdlineSlice(); err == nil {
		info.Cmdline = strings.Join(args, " ")
	}
	return info, nil
}
