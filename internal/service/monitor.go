package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"rushbot/internal/bot"
	"rushbot/internal/pkg/sysinfo"
)

const (
	defaultMonitorDuration = 30 * time.Second
	maxMonitorDuration     = 300 * time.Second
	monitorInterval        = time.Second
)

// MonitorService 实时系统监控
// 在支持消息原地更新的通道上每秒刷新一次面板，否则发送单次快照。
type MonitorService struct {
	collector *sysinfo.Collector
}

// NewMonitorService 创建监控服务
func NewMonitorService(collector *sysinfo.Collector) *MonitorService {
	return &MonitorService{collector: collector}
}

// ClampDuration 规范监控时长：非正取默认值，超上限截断
func ClampDuration(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultMonitorDuration
	}
	if d > maxMonitorDuration {
		return maxMonitorDuration
	}
	return d
}

// Watch 运行一次监控会话
// 通道不支持原地更新时降级为单次快照回复。
func (m *MonitorService) Watch(ctx context.Context, sink bot.Sink, duration time.Duration) error {
	duration = ClampDuration(duration)

	updater, ok := sink.(bot.LiveUpdater)
	if !ok {
		snap := m.collector.Collect(ctx)
		return sink.Reply(ctx, m.Render(snap, 0, 0, 0, duration))
	}

	live, err := updater.StartLive(ctx, "📊 Starting system monitor...")
	if err != nil {
		return err
	}

	// 留出发送延迟的余量，到点强制收尾
	deadline := time.Now().Add(duration + 5*time.Second)
	maxUpdates := int(duration / monitorInterval)

	prevRx, prevTx := m.collector.NetworkCounters()
	prevAt := time.Now()

	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for i := 0; i < maxUpdates; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if time.Now().After(deadline) {
			break
		}

		snap := m.collector.Collect(ctx)

		rx, tx := m.collector.NetworkCounters()
		elapsed := time.Since(prevAt).Seconds()
		var rxRate, txRate float64
		if elapsed > 0 {
			rxRate = rateDelta(rx, prevRx) / elapsed
			txRate = rateDelta(tx, prevTx) / elapsed
		}
		prevRx, prevTx = rx, tx
		prevAt = time.Now()

		remaining := duration - time.Duration(i+1)*monitorInterval
		if err := live.Update(ctx, m.Render(snap, rxRate, txRate, remaining, duration)); err != nil {
			log.Warn().Err(err).Msg("monitor update failed, stopping session")
			return nil
		}
	}

	snap := m.collector.Collect(ctx)
	return live.Update(ctx, m.renderFinal(snap))
}

// Render 绘制监控面板
func (m *MonitorService) Render(s *sysinfo.Snapshot, rxRate, txRate float64, remaining, total time.Duration) string {
	var b strings.Builder
	b.WriteString("📊 **System Monitor**\n")
	fmt.Fprintf(&b, "🖥️ Host: %s\n", s.Hostname)
	fmt.Fprintf(&b, "⚙️ CPU: %s %.1f%% (load %.2f)\n", ProgressBar(s.CPUPercent), s.CPUPercent, s.LoadAverage[0])
	fmt.Fprintf(&b, "🧠 Memory: %s %.1f%% (%s / %s)\n",
		ProgressBar(s.MemPercent()), s.MemPercent(),
		sysinfo.FormatBytes(s.MemUsed()), sysinfo.FormatBytes(s.MemTotal))
	fmt.Fprintf(&b, "💾 Disk: %s\n", s.DiskUsage)
	fmt.Fprintf(&b, "🌐 Network: ↓ %s/s ↑ %s/s\n", formatRate(rxRate), formatRate(txRate))
	fmt.Fprintf(&b, "🔢 Processes: %d\n", s.Processes)
	fmt.Fprintf(&b, "⏱️ Uptime: %s\n", sysinfo.FormatUptime(s.SystemUptime))
	if remaining > 0 {
		fmt.Fprintf(&b, "\n⏳ Monitoring... %ds remaining", int(remaining.Seconds()))
	}
	return b.String()
}

func (m *MonitorService) renderFinal(s *sysinfo.Snapshot) string {
	rendered := m.Render(s, 0, 0, 0, 0)
	return rendered + "\n✅ Monitoring session complete."
}

// ProgressBar 20 格的占用率条
func ProgressBar(percent float64) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	const width = 20
	filled := int(percent / 100 * width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// rateDelta 计数器回绕（接口重置）时按零处理
func rateDelta(cur, prev uint64) float64 {
	if cur < prev {
		return 0
	}
	return float64(cur - prev)
}

func formatRate(bytesPerSec float64) string {
	switch {
	case bytesPerSec >= 1024*1024:
		return fmt.Sprintf("%.2f MB", bytesPerSec/1024/1024)
	case bytesPerSec >= 1024:
		return fmt.Sprintf("%.2f KB", bytesPerSec/1024)
	default:
		return fmt.Sprintf("%.0f B", bytesPerSec)
	}
}
