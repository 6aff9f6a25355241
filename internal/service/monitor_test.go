package service

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"rushbot/internal/pkg/sysinfo"
)

func TestProgressBar(t *testing.T) {
	Convey("ProgressBar 绘制 20 格占用率条", t, func() {
		So(ProgressBar(0), ShouldEqual, "░░░░░░░░░░░░░░░░░░░░")
		So(ProgressBar(100), ShouldEqual, "████████████████████")
		So(ProgressBar(50), ShouldEqual, "██████████░░░░░░░░░░")

		Convey("越界值被钳制", func() {
			So(ProgressBar(-5), ShouldEqual, ProgressBar(0))
			So(ProgressBar(150), ShouldEqual, ProgressBar(100))
		})
	})
}

func TestClampDuration(t *testing.T) {
	Convey("ClampDuration 规范监控时长", t, func() {
		So(ClampDuration(0), ShouldEqual, 30*time.Second)
		So(ClampDuration(-time.Second), ShouldEqual, 30*time.Second)
		So(ClampDuration(60*time.Second), ShouldEqual, 60*time.Second)
		So(ClampDuration(10*time.Minute), ShouldEqual, 300*time.Second)
	})
}

func TestRateDelta(t *testing.T) {
	Convey("rateDelta 处理计数器回绕", t, func() {
		So(rateDelta(200, 100), ShouldEqual, 100)
		So(rateDelta(50, 100), ShouldEqual, 0)
	})
}

func TestMonitorService_Render(t *testing.T) {
	Convey("MonitorService.Render 绘制监控面板", t, func() {
		svc := NewMonitorService(nil)
		snap := &sysinfo.Snapshot{
			Hostname:     "web-1",
			CPUPercent:   42.5,
			LoadAverage:  [3]float64{1.2, 1.0, 0.9},
			MemTotal:     16 * 1024 * 1024 * 1024,
			MemAvailable: 8 * 1024 * 1024 * 1024,
			DiskUsage:    "20G/100G (20%)",
			Processes:    123,
			SystemUptime: 3 * time.Hour,
		}

		out := svc.Render(snap, 2048, 1024, 10*time.Second, 30*time.Second)
		So(out, ShouldContainSubstring, "web-1")
		So(out, ShouldContainSubstring, "42.5%")
		So(out, ShouldContainSubstring, "2.00 KB/s")
		So(out, ShouldContainSubstring, "10s remaining")

		Convey("剩余时间为零时不显示倒计时", func() {
			out := svc.Render(snap, 0, 0, 0, 30*time.Second)
			So(out, ShouldNotContainSubstring, "remaining")
		})
	})
}
