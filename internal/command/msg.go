package command

import (
	"context"
	"fmt"
	"strings"

	"rushbot/internal/bot"
)

// Msg 代发私信指令（管理员）
// 需要传输支持私信能力，不支持时明确告知而不是静默失败。
func Msg() bot.Command {
	return bot.Command{
		Name:        "msg",
		Description: "Send a direct message to a user",
		AdminOnly:   true,
		Run: func(ctx context.Context, inv *bot.Invocation) error {
			if len(inv.Args) < 2 {
				return bot.Usage("Usage: `!msg <user_id> <message>`")
			}

			dm, ok := inv.Sink.(bot.DirectMessenger)
			if !ok {
				return inv.Sink.Reply(ctx, "❌ Direct messages are not supported on this channel.")
			}

			userID := inv.Args[0]
			text := strings.Join(inv.Args[1:], " ")
			if err := dm.SendDirect(ctx, userID, text); err != nil {
				return err
			}
			return inv.Sink.Reply(ctx, fmt.Sprintf("✅ Message sent to `%s`.", userID))
		},
	}
}
