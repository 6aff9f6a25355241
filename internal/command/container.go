package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"rushbot/internal/bot"
	"rushbot/internal/pkg/docker"
)

const containerHelp = "🐳 **Container Management**\n\n" +
	"`!container list` — list all containers\n" +
	"`!container status <name>` — container state\n" +
	"`!container start <name>`\n" +
	"`!container stop <name>`\n" +
	"`!container restart <name>`\n" +
	"`!container logs <name> [lines]` — recent logs (default 20)\n" +
	"`!container stats` — resource usage of running containers"

// Container Docker 容器管理指令（管理员）
func Container(client *docker.Client) bot.Command {
	return bot.Command{
		Name:        "container",
		Description: "Manage Docker containers",
		AdminOnly:   true,
		Run: func(ctx context.Context, inv *bot.Invocation) error {
			if len(inv.Args) == 0 {
				return inv.Sink.Reply(ctx, containerHelp)
			}

			action := inv.Args[0]
			switch action {
			case "list":
				out, err := client.List(ctx)
				if err != nil {
					return containerReplyError(ctx, inv.Sink, err)
				}
				return inv.Sink.Reply(ctx, codeBlock(out))

			case "stats":
				out, err := client.Stats(ctx)
				if err != nil {
					return containerReplyError(ctx, inv.Sink, err)
				}
				return inv.Sink.Reply(ctx, codeBlock(out))

			case "status":
				if len(inv.Args) < 2 {
					return bot.Usage("Usage: `!container status <name>`")
				}
				state, startedAt, err := client.Status(ctx, inv.Args[1])
				if err != nil {
					return containerReplyError(ctx, inv.Sink, err)
				}
				msg := fmt.Sprintf("📦 **%s** is `%s`", inv.Args[1], state)
				if startedAt != "" {
					msg += fmt.Sprintf(" (started %s)", startedAt)
				}
				return inv.Sink.Reply(ctx, msg)

			case "start", "stop", "restart":
				if len(inv.Args) < 2 {
					return bot.Usage("Usage: `!container %s <name>`", action)
				}
				var err error
				switch action {
				case "start":
					err = client.Start(ctx, inv.Args[1])
				case "stop":
					err = client.Stop(ctx, inv.Args[1])
				case "restart":
					err = client.Restart(ctx, inv.Args[1])
				}
				if err != nil {
					return containerReplyError(ctx, inv.Sink, err)
				}
				return inv.Sink.Reply(ctx, fmt.Sprintf("✅ Container **%s** %sed.", inv.Args[1], action))

			case "logs":
				if len(inv.Args) < 2 {
					return bot.Usage("Usage: `!container logs <name> [lines]`")
				}
				tail := 20
				if len(inv.Args) >= 3 {
					n, err := strconv.Atoi(inv.Args[2])
					if err != nil || n <= 0 || n > 200 {
						return bot.Usage("Line count must be between 1 and 200.")
					}
					tail = n
				}
				out, err := client.Logs(ctx, inv.Args[1], tail)
				if err != nil {
					return containerReplyError(ctx, inv.Sink, err)
				}
				if out == "" {
					out = "(no log output)"
				}
				return inv.Sink.Reply(ctx, codeBlock(out))

			default:
				return bot.Usage("Unknown action `%s`.\n\n%s", action, containerHelp)
			}
		},
	}
}

// containerReplyError 已知的容器操作失败直接回给用户，其他错误走统一通知
func containerReplyError(ctx context.Context, sink bot.Sink, err error) error {
	switch {
	case errors.Is(err, docker.ErrContainerNotFound):
		return sink.Reply(ctx, "❌ Container not found.")
	case errors.Is(err, docker.ErrDockerUnavailable):
		return sink.Reply(ctx, "❌ Docker is not available on this host.")
	default:
		return err
	}
}

func codeBlock(s string) string {
	return "```\n" + s + "\n```"
}
