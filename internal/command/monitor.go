package command

import (
	"context"
	"strconv"
	"time"

	"rushbot/internal/bot"
	"rushbot/internal/service"
)

// Monitor 实时系统监控指令（管理员）
// 参数为监控秒数，缺省 30 秒，上限 300 秒。
func Monitor(svc *service.MonitorService) bot.Command {
	return bot.Command{
		Name:        "monitor",
		Description: "Live system monitor (seconds, default 30, max 300)",
		AdminOnly:   true,
		Run: func(ctx context.Context, inv *bot.Invocation) error {
			var duration time.Duration
			if len(inv.Args) > 0 {
				secs, err := strconv.Atoi(inv.Args[0])
				if err != nil || secs <= 0 {
					return bot.Usage("Invalid duration. Usage: `!monitor [seconds]`")
				}
				duration = time.Duration(secs) * time.Second
			}
			return svc.Watch(ctx, inv.Sink, duration)
		},
	}
}
