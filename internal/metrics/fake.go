package metrics

import (
	"errors"
	"time"
)

// FakeSource returns scripted readings for testing.
// CPU readings are consumed in order; the last one repeats.
type FakeSource struct {
	CPU       []CPUTimes
	RAMUsed   uint64
	RAMTotal  uint64
	DiskUsed  uint64
	DiskTotal uint64
	IP        string
	Up        time.Duration
	TempC     float64
	Host      string

	// Fail lists probes that return an error: "cpu", "memory", "disk",
	// "ip", "uptime", "temperature", "hostname".
	Fail map[string]bool

	cpuIndex int
}

var errFake = errors.New("simulated failure")

func (f *FakeSource) fail(probe string) error {
	if f.Fail[probe] {
		return errFake
	}
	return nil
}

// CPUTimes returns the next scripted reading.
func (f *FakeSource) CPUTimes() (CPUTimes, error) {
	if err := f.fail("cpu"); err != nil {
		return CPUTimes{}, err
	}
	if len(f.CPU) == 0 {
		return CPUTimes{}, errors.New("no cpu readings")
	}
	c := f.CPU[f.cpuIndex]
	if f.cpuIndex < len(f.CPU)-1 {
		f.cpuIndex++
	}
	return c, nil
}

// Memory returns the scripted values.
func (f *FakeSource) Memory() (uint64, uint64, error) {
	return f.RAMUsed, f.RAMTotal, f.fail("memory")
}

// Disk returns the scripted values.
func (f *FakeSource) Disk(string) (uint64, uint64, error) {
	return f.DiskUsed, f.DiskTotal, f.fail("disk")
}

// IPv4 returns the scripted address.
func (f *FakeSource) IPv4() (string, error) {
	return f.IP, f.fail("ip")
}

// Uptime returns the scripted uptime.
func (f *FakeSource) Uptime() (time.Duration, error) {
	return f.Up, f.fail("uptime")
}

// Temperature returns the scripted temperature.
func (f *FakeSource) Temperature() (float64, error) {
	return f.TempC, f.fail("temperature")
}

// Hostname returns the scripted host name.
func (f *FakeSource) Hostname() (string, error) {
	return f.Host, f.fail("hostname")
}
