package command

import (
	"context"
	"fmt"
	"strings"

	"rushbot/internal/bot"
	"rushbot/internal/pkg/sysinfo"
	"rushbot/internal/service"
)

// Status 系统状态快照指令
func Status(collector *sysinfo.Collector) bot.Command {
	return bot.Command{
		Name:        "status",
		Description: "Show system status",
		Run: func(ctx context.Context, inv *bot.Invocation) error {
			bot.SignalTyping(ctx, inv.Sink)
			snap := collector.Collect(ctx)
			return inv.Sink.Reply(ctx, renderStatus(snap))
		},
	}
}

func renderStatus(s *sysinfo.Snapshot) string {
	var b strings.Builder
	b.WriteString("🖥️ **System Status**\n\n")
	fmt.Fprintf(&b, "**Host:** %s (%s/%s)\n", s.Hostname, s.Platform, s.Arch)
	if s.Distro != "" {
		fmt.Fprintf(&b, "**OS:** %s\n", s.Distro)
	}
	if s.Kernel != "" {
		fmt.Fprintf(&b, "**Kernel:** %s\n", s.Kernel)
	}
	fmt.Fprintf(&b, "**Uptime:** %s (bot: %s)\n\n", sysinfo.FormatUptime(s.SystemUptime), sysinfo.FormatUptime(s.BotUptime))

	fmt.Fprintf(&b, "**CPU:** %s %.1f%%\n", service.ProgressBar(s.CPUPercent), s.CPUPercent)
	fmt.Fprintf(&b, "**Load:** %.2f %.2f %.2f (%d cores)\n", s.LoadAverage[0], s.LoadAverage[1], s.LoadAverage[2], s.CPUCores)
	fmt.Fprintf(&b, "**Memory:** %s %.1f%% (%s / %s)\n",
		service.ProgressBar(s.MemPercent()), s.MemPercent(),
		sysinfo.FormatBytes(s.MemUsed()), sysinfo.FormatBytes(s.MemTotal))
	fmt.Fprintf(&b, "**Buffers/Cache:** %s / %s\n",
		sysinfo.FormatBytes(s.MemBuffers), sysinfo.FormatBytes(s.MemCached))
	if s.DiskUsage != "" {
		fmt.Fprintf(&b, "**Disk (/):** %s\n", s.DiskUsage)
	}
	if s.InodeUsage != "" {
		fmt.Fprintf(&b, "**Inodes (/):** %s\n", s.InodeUsage)
	}
	fmt.Fprintf(&b, "**Processes:** %d\n\n", s.Processes)

	if len(s.Interfaces) > 0 {
		b.WriteString("**Network:**\n")
		for _, iface := range s.Interfaces {
			fmt.Fprintf(&b, "  %s: %s\n", iface.Name, iface.Addr)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "**Runtime:** %s, pid %d", s.GoVersion, s.PID)
	return b.String()
}
