package command

import (
	"context"

	"rushbot/internal/bot"
)

// Ping 连通性检测指令
func Ping() bot.Command {
	return bot.Command{
		Name:        "ping",
		Description: "Check if the bot is responsive",
		Run: func(ctx context.Context, inv *bot.Invocation) error {
			return inv.Sink.Reply(ctx, "🏓 Pong!")
		},
	}
}
