package command

import (
	"context"
	"strings"
	"time"

	"rushbot/internal/bot"
	"rushbot/internal/pkg/execx"
)

// speedtest 需要比普通命令长得多的时限
const speedtestTimeout = 120 * time.Second

// Speedtest 网络测速指令
func Speedtest(runner *execx.Runner) bot.Command {
	return bot.Command{
		Name:        "speedtest",
		Description: "Run a network speed test",
		Run: func(ctx context.Context, inv *bot.Invocation) error {
			bot.SignalTyping(ctx, inv.Sink)
			if err := inv.Sink.Reply(ctx, "🚀 Running speed test, this takes a minute..."); err != nil {
				return err
			}

			res, err := runner.RunWithTimeout(ctx, speedtestTimeout, "speedtest-cli", "--simple")
			if err != nil {
				return err
			}
			if res.TimedOut {
				return inv.Sink.Reply(ctx, "⏱️ Speed test timed out.")
			}
			if res.ExitCode != 0 {
				return inv.Sink.Reply(ctx, "❌ Speed test failed. Is `speedtest-cli` installed?")
			}

			return inv.Sink.Reply(ctx, "📶 **Speed Test Results**\n"+codeBlock(strings.TrimSpace(res.Stdout)))
		},
	}
}
