package metrics

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

// tempSensors are sensor key fragments tried in order when picking the SoC
// temperature.
var tempSensors = []string{"cpu", "soc", "thermal"}

var errNoSensor = errors.New("no temperature sensor")

// SystemSource reads the local host through gopsutil.
type SystemSource struct{}

// NewSystemSource creates a SystemSource.
func NewSystemSource() *SystemSource {
	return &SystemSource{}
}

// CPUTimes returns aggregate CPU counters. Idle and iowait count as not busy.
func (SystemSource) CPUTimes() (CPUTimes, error) {
	times, err := cpu.Times(false)
	if err != nil {
		return CPUTimes{}, fmt.Errorf("cpu times: %w", err)
	}
	if len(times) == 0 {
		return CPUTimes{}, errors.New("cpu times: empty")
	}
	t := times[0]
	total := t.User + t.System + t.Idle + t.Nice + t.Iowait + t.Irq + t.Softirq + t.Steal
	return CPUTimes{Busy: total - t.Idle - t.Iowait, Total: total}, nil
}

// Memory returns used (total minus available) and total bytes.
func (SystemSource) Memory() (uint64, uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0, fmt.Errorf("virtual memory: %w", err)
	}
	used := uint64(0)
	if vm.Total > vm.Available {
		used = vm.Total - vm.Available
	}
	return used, vm.Total, nil
}

// Disk returns used and total bytes of the filesystem holding path.
func (SystemSource) Disk(path string) (uint64, uint64, error) {
	u, err := disk.Usage(path)
	if err != nil {
		return 0, 0, fmt.Errorf("disk usage %s: %w", path, err)
	}
	return u.Used, u.Total, nil
}

// IPv4 returns the first IPv4 address on an up, non-loopback interface.
func (SystemSource) IPv4() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("interfaces: %w", err)
	}
	for _, iface := range ifaces {
		if !lo.Contains(iface.Flags, "up") || lo.Contains(iface.Flags, "loopback") {
			continue
		}
		for _, a := range iface.Addrs {
			if ip, ok := parseIPv4(a.Addr); ok {
				return ip, nil
			}
		}
	}
	return "", nil
}

func parseIPv4(addr string) (string, bool) {
	if p, err := netip.ParsePrefix(addr); err == nil {
		a := p.Addr()
		return a.String(), a.Is4() && !a.IsLoopback()
	}
	a, err := netip.ParseAddr(addr)
	if err != nil {
		return "", false
	}
	return a.String(), a.Is4() && !a.IsLoopback()
}

// Uptime returns time since boot.
func (SystemSource) Uptime() (time.Duration, error) {
	secs, err := host.Uptime()
	if err != nil {
		return 0, fmt.Errorf("uptime: %w", err)
	}
	return time.Duration(secs) * time.Second, nil
}

// Temperature returns the first sensor whose key mentions the CPU or SoC.
func (SystemSource) Temperature() (float64, error) {
	temps, err := host.SensorsTemperatures()
	if err != nil && len(temps) == 0 {
		return 0, fmt.Errorf("sensors: %w", err)
	}
	return pickTemperature(temps)
}

func pickTemperature(temps []host.TemperatureStat) (float64, error) {
	for _, want := range tempSensors {
		for _, t := range temps {
			if strings.Contains(strings.ToLower(t.SensorKey), want) && t.Temperature > 0 {
				return t.Temperature, nil
			}
		}
	}
	return 0, errNoSensor
}

// Hostname returns the host name.
func (SystemSource) Hostname() (string, error) {
	info, err := host.Info()
	if err != nil {
		return "", fmt.Errorf("host info: %w", err)
	}
	return info.Hostname, nil
}
