package command

import (
	"context"
	"fmt"
	"strings"

	"rushbot/internal/bot"
)

// Menu 指令清单
// list 延迟求值，注册表装配完成后才会被调用，避免 menu 与注册表互相依赖。
// 管理员看到全部指令，普通用户只看到开放指令。
func Menu(prefix string, list func() []bot.Command, isAdmin func(userID string) bool) bot.Command {
	return bot.Command{
		Name:        "menu",
		Description: "Show available commands",
		Run: func(ctx context.Context, inv *bot.Invocation) error {
			admin := isAdmin(inv.AuthorID)

			var b strings.Builder
			b.WriteString("📋 **Available Commands**\n\n")
			for _, cmd := range list() {
				if cmd.AdminOnly && !admin {
					continue
				}
				marker := ""
				if cmd.AdminOnly {
					marker = " 🔒"
				}
				fmt.Fprintf(&b, "`%s%s`%s — %s\n", prefix, cmd.Name, marker, cmd.Description)
			}
			if admin {
				b.WriteString("\n🔒 admin only")
			}

			return inv.Sink.Reply(ctx, b.String())
		},
	}
}
