package sysinfo

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseLoadAvg(t *testing.T) {
	Convey("parseLoadAvg 解析 /proc/loadavg", t, func() {
		load := parseLoadAvg("0.52 0.58 0.59 1/467 12345\n")
		So(load[0], ShouldAlmostEqual, 0.52)
		So(load[1], ShouldAlmostEqual, 0.58)
		So(load[2], ShouldAlmostEqual, 0.59)

		Convey("格式异常时得到零值", func() {
			load := parseLoadAvg("garbage")
			So(load[0], ShouldEqual, 0)
		})
	})
}

func TestParseMeminfo(t *testing.T) {
	Convey("parseMeminfo 解析 /proc/meminfo 并换算为字节", t, func() {
		input := "MemTotal:       16384000 kB\nMemAvailable:    8192000 kB\nBuffers:          102400 kB\nCached:          2048000 kB\n"
		mem := parseMeminfo(input)
		So(mem["MemTotal"], ShouldEqual, uint64(16384000)*1024)
		So(mem["MemAvailable"], ShouldEqual, uint64(8192000)*1024)
		So(mem["Buffers"], ShouldEqual, uint64(102400)*1024)
	})
}

func TestParseUptime(t *testing.T) {
	Convey("parseUptime 解析 /proc/uptime", t, func() {
		So(parseUptime("3600.25 7200.00\n"), ShouldEqual, time.Duration(3600.25*float64(time.Second)))
		So(parseUptime(""), ShouldEqual, time.Duration(0))
	})
}

func TestParseOSRelease(t *testing.T) {
	Convey("parseOSRelease 提取 PRETTY_NAME", t, func() {
		input := "NAME=\"Ubuntu\"\nPRETTY_NAME=\"Ubuntu 22.04.3 LTS\"\nID=ubuntu\n"
		So(parseOSRelease(input), ShouldEqual, "Ubuntu 22.04.3 LTS")
		So(parseOSRelease("ID=alpine\n"), ShouldEqual, "")
	})
}

func TestParseNetDev(t *testing.T) {
	Convey("parseNetDev 取第一块物理网卡的收发字节数", t, func() {
		input := `Inter-|   Receive                                                |  Transmit
 face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed
    lo: 1000000    9999    0    0    0     0          0         0  1000000    9999    0    0    0     0       0          0
  eth0: 5000000   40000    0    0    0     0          0         0  3000000   30000    0    0    0     0       0          0
`
		rx, tx := parseNetDev(input)
		So(rx, ShouldEqual, 5000000)
		So(tx, ShouldEqual, 3000000)

		Convey("没有物理网卡时为零", func() {
			rx, tx := parseNetDev("    lo: 1 1 0 0 0 0 0 0 1 1 0 0 0 0 0 0\n")
			So(rx, ShouldEqual, 0)
			So(tx, ShouldEqual, 0)
		})
	})
}

func TestSnapshot_Mem(t *testing.T) {
	Convey("Snapshot 内存派生指标", t, func() {
		s := &Snapshot{MemTotal: 1000, MemAvailable: 250}
		So(s.MemUsed(), ShouldEqual, 750)
		So(s.MemPercent(), ShouldAlmostEqual, 75.0)

		Convey("total 为零时不除零", func() {
			empty := &Snapshot{}
			So(empty.MemPercent(), ShouldEqual, 0)
		})
	})
}

func TestFormatUptime(t *testing.T) {
	Convey("FormatUptime 人类可读时长", t, func() {
		So(FormatUptime(90*time.Second), ShouldEqual, "1m 30s")
		So(FormatUptime(3*time.Hour+20*time.Minute), ShouldEqual, "3h 20m")
		So(FormatUptime(49*time.Hour+5*time.Minute), ShouldEqual, "2d 1h 5m")
		So(FormatUptime(12*time.Second), ShouldEqual, "12s")
	})
}
