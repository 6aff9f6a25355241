package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"rushbot/internal/bot"
	"rushbot/internal/pkg/execx"
)

// blockedPatterns 不允许通过聊天执行的破坏性命令片段
var blockedPatterns = []string{
	"rm -rf",
	"sudo rm",
	"dd if=",
	"mkfs",
	"fdisk",
	"shutdown",
	"reboot",
	"halt",
	"init 0",
	"init 6",
	"> /dev/sda",
	"passwd",
}

// CLI 受限 shell 执行指令（管理员）
func CLI(runner *execx.Runner) bot.Command {
	return bot.Command{
		Name:        "cli",
		Description: "Run a shell command on the host",
		AdminOnly:   true,
		Run: func(ctx context.Context, inv *bot.Invocation) error {
			cmdline := inv.ArgsText()
			if cmdline == "" {
				return bot.Usage("Please provide a command. Usage: `!cli <command>`")
			}

			if pattern := matchBlocked(cmdline); pattern != "" {
				log.Warn().Str("user_id", inv.AuthorID).Str("pattern", pattern).Msg("blocked shell command")
				return inv.Sink.Reply(ctx, fmt.Sprintf("🚫 Command blocked: contains `%s`.", pattern))
			}

			bot.SignalTyping(ctx, inv.Sink)

			res, err := runner.RunShell(ctx, cmdline)
			if err != nil {
				return err
			}

			var b strings.Builder
			if res.TimedOut {
				b.WriteString("⏱️ Command timed out.\n")
			} else if res.ExitCode != 0 {
				fmt.Fprintf(&b, "⚠️ Exit code %d.\n", res.ExitCode)
			}

			out := strings.TrimSpace(res.Output())
			if out == "" {
				out = "(no output)"
			}
			b.WriteString(codeBlock(out))
			if res.Truncated {
				b.WriteString("\n✂️ Output truncated.")
			}

			return inv.Sink.Reply(ctx, b.String())
		},
	}
}

func matchBlocked(cmdline string) string {
	lowered := strings.ToLower(cmdline)
	for _, pattern := range blockedPatterns {
		if strings.Contains(lowered, pattern) {
			return pattern
		}
	}
	return ""
}
