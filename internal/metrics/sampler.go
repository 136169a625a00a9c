// Package metrics samples host statistics at a fixed interval.
// Every probe is fallible; a failed probe leaves its fields marked unavailable
// and never stops the sampler.
package metrics

import (
	"log"
	"time"

	"github.com/samber/lo"

	"github.com/sweeney/pipboy-mini/internal/logic"
)

// DefaultInterval is the time between samples.
const DefaultInterval = 2 * time.Second

// DiskPath is the filesystem reported on the DATA and STAT screens.
const DiskPath = "/"

// CPUTimes is a cumulative CPU counter reading, in seconds.
type CPUTimes struct {
	Busy  float64
	Total float64
}

// Source reads raw values from the host.
type Source interface {
	CPUTimes() (CPUTimes, error)
	Memory() (used, total uint64, err error)
	Disk(path string) (used, total uint64, err error)
	// IPv4 returns the first non-loopback address of an interface that is up,
	// or "" if there is none.
	IPv4() (string, error)
	Uptime() (time.Duration, error)
	// Temperature returns the SoC temperature in Celsius.
	Temperature() (float64, error)
	Hostname() (string, error)
}

// Sampler turns Source readings into MetricsSnapshots.
// It is not safe for concurrent use.
type Sampler struct {
	src      Source
	interval time.Duration

	last    time.Time
	sampled bool

	prevCPU CPUTimes
	hasPrev bool

	failing map[string]bool
}

// NewSampler creates a sampler that reads src at most once per interval.
func NewSampler(src Source, interval time.Duration) *Sampler {
	return &Sampler{
		src:      src,
		interval: interval,
		failing:  make(map[string]bool),
	}
}

// MaybeSample returns a fresh snapshot if the interval has elapsed since the
// previous sample. The first call always samples.
func (s *Sampler) MaybeSample(now time.Time) (logic.MetricsSnapshot, bool) {
	if s.sampled && now.Sub(s.last) < s.interval && now.Sub(s.last) >= 0 {
		return logic.MetricsSnapshot{}, false
	}
	return s.Sample(now), true
}

// Sample reads every probe now.
func (s *Sampler) Sample(now time.Time) logic.MetricsSnapshot {
	s.last = now
	s.sampled = true

	snap := logic.MetricsSnapshot{Time: now}

	if cur, err := s.src.CPUTimes(); s.check("cpu", err) {
		if s.hasPrev {
			snap.CPUPercent = CPUPercent(s.prevCPU, cur)
			snap.CPUValid = true
		}
		s.prevCPU = cur
		s.hasPrev = true
	}

	if used, total, err := s.src.Memory(); s.check("memory", err) {
		snap.RAMUsed, snap.RAMTotal = used, total
	}

	if used, total, err := s.src.Disk(DiskPath); s.check("disk", err) {
		snap.DiskUsed, snap.DiskTotal = used, total
	}

	if ip, err := s.src.IPv4(); s.check("ip", err) && ip != "" {
		snap.IP, snap.HasIP = ip, true
	}

	if up, err := s.src.Uptime(); s.check("uptime", err) {
		snap.Uptime = up
	}

	if temp, err := s.src.Temperature(); s.check("temperature", err) {
		snap.TempC, snap.HasTemp = temp, true
	}

	if name, err := s.src.Hostname(); s.check("hostname", err) {
		snap.Hostname = name
	}

	return snap
}

// check reports whether err is nil, logging only when a probe starts failing.
func (s *Sampler) check(probe string, err error) bool {
	if err == nil {
		s.failing[probe] = false
		return true
	}
	if !s.failing[probe] {
		log.Printf("metrics: %s: %v", probe, err)
	}
	s.failing[probe] = true
	return false
}

// CPUPercent computes busy/total over the delta between two readings,
// clamped to [0, 100]. A non-positive total delta (first reading, counter
// reset or wrap) yields 0.
func CPUPercent(prev, cur CPUTimes) float64 {
	total := cur.Total - prev.Total
	if total <= 0 {
		return 0
	}
	return lo.Clamp((cur.Busy-prev.Busy)/total*100, 0, 100)
}
