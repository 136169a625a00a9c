package render

import (
	"fmt"
	"time"

	"github.com/sweeney/pipboy-mini/internal/logic"
)

const unavailable = "n/a"

// FormatCPU renders the CPU percentage, or "--" until two readings exist.
func FormatCPU(m logic.MetricsSnapshot) string {
	if !m.CPUValid {
		return "--"
	}
	return fmt.Sprintf("%.0f%%", m.CPUPercent)
}

// FormatMemory renders used/total in MiB.
func FormatMemory(used, total uint64) string {
	if total == 0 {
		return unavailable
	}
	return fmt.Sprintf("%dM/%dM", used>>20, total>>20)
}

// FormatDisk renders used/total in GiB.
func FormatDisk(used, total uint64) string {
	if total == 0 {
		return unavailable
	}
	const gib = 1 << 30
	return fmt.Sprintf("%.1fG/%.1fG", float64(used)/gib, float64(total)/gib)
}

// FormatIP renders the address or a no-network marker.
func FormatIP(m logic.MetricsSnapshot) string {
	if !m.HasIP {
		return "no network"
	}
	return m.IP
}

// FormatUptime renders d as "1d 02h 03m", "2h 03m" or "5m".
func FormatUptime(d time.Duration) string {
	if d <= 0 {
		return unavailable
	}
	mins := int(d / time.Minute)
	days, hours, mins := mins/(24*60), (mins/60)%24, mins%60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %02dh %02dm", days, hours, mins)
	case hours > 0:
		return fmt.Sprintf("%dh %02dm", hours, mins)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}

// FormatTemp renders the SoC temperature in Celsius.
func FormatTemp(m logic.MetricsSnapshot) string {
	if !m.HasTemp {
		return unavailable
	}
	return fmt.Sprintf("%.1fC", m.TempC)
}

func ratio(used, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total)
}

func percent(used, total uint64) string {
	if total == 0 {
		return unavailable
	}
	return fmt.Sprintf("%.0f%%", ratio(used, total)*100)
}
