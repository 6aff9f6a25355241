package sysinfo

import (
	"context"
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"rushbot/internal/pkg/execx"
)

var processStart = time.Now()

// Snapshot 一次系统状态采样
type Snapshot struct {
	Hostname     string
	Platform     string
	Arch         string
	Distro       string
	Kernel       string
	SystemUptime time.Duration
	BotUptime    time.Duration

	CPUCores    int
	LoadAverage [3]float64
	CPUPercent  float64 // load1 / cores * 100，上限 100

	MemTotal     uint64 // bytes
	MemAvailable uint64
	MemBuffers   uint64
	MemCached    uint64

	DiskUsage  string // "used/total (pct)" for /
	InodeUsage string
	Processes  int

	Interfaces []Interface
	PID        int
	GoVersion  string
}

// Interface 非回环 IPv4 接口
type Interface struct {
	Name string
	Addr string
}

// MemUsed 已用内存字节数
func (s *Snapshot) MemUsed() uint64 {
	if s.MemAvailable > s.MemTotal {
		return 0
	}
	return s.MemTotal - s.MemAvailable
}

// MemPercent 内存使用率
func (s *Snapshot) MemPercent() float64 {
	if s.MemTotal == 0 {
		return 0
	}
	return float64(s.MemUsed()) / float64(s.MemTotal) * 100
}

// Collector 系统信息采集器
// /proc 文件直接读取，磁盘与进程数通过外部命令采集。
type Collector struct {
	runner *execx.Runner
}

// NewCollector 创建采集器
func NewCollector(runner *execx.Runner) *Collector {
	return &Collector{runner: runner}
}

// Collect 采集一次快照，个别来源失败不阻断其余字段
func (c *Collector) Collect(ctx context.Context) *Snapshot {
	s := &Snapshot{
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
		CPUCores:  runtime.NumCPU(),
		PID:       os.Getpid(),
		GoVersion: runtime.Version(),
		BotUptime: time.Since(processStart),
	}

	s.Hostname, _ = os.Hostname()

	if data, err := os.ReadFile("/proc/loadavg"); err == nil {
		s.LoadAverage = parseLoadAvg(string(data))
	}
	s.CPUPercent = s.LoadAverage[0] / float64(s.CPUCores) * 100
	if s.CPUPercent > 100 {
		s.CPUPercent = 100
	}

	if data, err := os.ReadFile("/proc/meminfo"); err == nil {
		mem := parseMeminfo(string(data))
		s.MemTotal = mem["MemTotal"]
		s.MemAvailable = mem["MemAvailable"]
		s.MemBuffers = mem["Buffers"]
		s.MemCached = mem["Cached"]
	}

	if data, err := os.ReadFile("/proc/uptime"); err == nil {
		s.SystemUptime = parseUptime(string(data))
	}

	if data, err := os.ReadFile("/etc/os-release"); err == nil {
		s.Distro = parseOSRelease(string(data))
	}

	if res, err := c.runner.Run(ctx, "uname", "-r"); err == nil && res.ExitCode == 0 {
		s.Kernel = strings.TrimSpace(res.Stdout)
	}

	if res, err := c.runner.RunShell(ctx, `df -h / | tail -1 | awk '{print $3 "/" $2 " (" $5 ")"}'`); err == nil && res.ExitCode == 0 {
		s.DiskUsage = strings.TrimSpace(res.Stdout)
	}

	if res, err := c.runner.RunShell(ctx, `df -i / | tail -1 | awk '{print $5}'`); err == nil && res.ExitCode == 0 {
		s.InodeUsage = strings.TrimSpace(res.Stdout)
	}

	if res, err := c.runner.RunShell(ctx, "ps aux | wc -l"); err == nil && res.ExitCode == 0 {
		s.Processes, _ = strconv.Atoi(strings.TrimSpace(res.Stdout))
	}

	s.Interfaces = collectInterfaces()

	return s
}

// NetworkCounters 读取首个物理网卡的累计收发字节数（用于速率差分）
func (c *Collector) NetworkCounters() (rx, tx uint64) {
	data, err := os.ReadFile("/proc/net/dev")
	if err != nil {
		return 0, 0
	}
	return parseNetDev(string(data))
}

func collectInterfaces() []Interface {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}

	var out []Interface
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok || ipNet.IP.To4() == nil {
				continue
			}
			out = append(out, Interface{Name: iface.Name, Addr: ipNet.IP.String()})
			break
		}
	}
	return out
}

func parseLoadAvg(s string) [3]float64 {
	var load [3]float64
	fields := strings.Fields(s)
	for i := 0; i < 3 && i < len(fields); i++ {
		load[i], _ = strconv.ParseFloat(fields[i], 64)
	}
	return load
}

// parseMeminfo 解析 /proc/meminfo，返回字节数
func parseMeminfo(s string) map[string]uint64 {
	out := make(map[string]uint64)
	for _, line := range strings.Split(s, "\n") {
		name, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		kb, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			continue
		}
		out[name] = kb * 1024
	}
	return out
}

func parseUptime(s string) time.Duration {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	secs, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

func parseOSRelease(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if v, ok := strings.CutPrefix(line, "PRETTY_NAME="); ok {
			return strings.Trim(v, `"`)
		}
	}
	return ""
}

// parseNetDev 取第一块 eth/wlan/enp 前缀网卡的 rx/tx 字节数
func parseNetDev(s string) (rx, tx uint64) {
	for _, line := range strings.Split(s, "\n") {
		name, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if !strings.HasPrefix(name, "eth") && !strings.HasPrefix(name, "wlan") && !strings.HasPrefix(name, "enp") {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) < 9 {
			continue
		}
		rx, _ = strconv.ParseUint(fields[0], 10, 64)
		tx, _ = strconv.ParseUint(fields[8], 10, 64)
		return rx, tx
	}
	return 0, 0
}

// FormatUptime 人类可读的时长格式
func FormatUptime(d time.Duration) string {
	secs := int64(d.Seconds())
	days := secs / 86400
	hours := (secs % 86400) / 3600
	minutes := (secs % 3600) / 60
	seconds := secs % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// FormatBytes GB 粒度显示
func FormatBytes(b uint64) string {
	return fmt.Sprintf("%.2f GB", float64(b)/1024/1024/1024)
}
