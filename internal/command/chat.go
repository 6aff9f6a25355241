package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"rushbot/internal/ai"
	"rushbot/internal/bot"
	"rushbot/internal/pkg/cache"
	"rushbot/internal/service"
)

// Chat AI 对话指令
// cooldown 为 nil 时不限频。
func Chat(svc *service.ChatService, modalities []ai.Modality, cooldown *cache.RedisCache, cooldownTTL time.Duration) bot.Command {
	return bot.Command{
		Name:        "chat",
		Description: "Chat with the AI assistant",
		Run: func(ctx context.Context, inv *bot.Invocation) error {
			prompt := inv.ArgsText()
			if prompt == "" {
				return bot.Usage("Please provide a message. Usage: `!chat <your message>`")
			}

			if cooldown != nil && cooldownTTL > 0 {
				ok, err := cooldown.AcquireCooldown(ctx, cache.ChatCooldownKey(inv.AuthorID), cooldownTTL)
				if err != nil {
					// 限频不可用时放行，比拒绝服务更可取
					log.Warn().Err(err).Str("user_id", inv.AuthorID).Msg("cooldown check failed, allowing request")
				} else if !ok {
					remaining, _ := cooldown.CooldownRemaining(ctx, cache.ChatCooldownKey(inv.AuthorID))
					return inv.Sink.Reply(ctx, fmt.Sprintf("⏳ Please wait %ds before chatting again.", int(remaining.Seconds())+1))
				}
			}

			bot.SignalTyping(ctx, inv.Sink)

			result, err := svc.Respond(ctx, inv.AuthorID, prompt, modalities)
			if err != nil {
				if errors.Is(err, service.ErrEmptyPrompt) {
					return bot.Usage("Please provide a message. Usage: `!chat <your message>`")
				}
				return err
			}

			return sendResult(ctx, inv.Sink, result)
		},
	}
}

// Image AI 图片生成指令
func Image(svc *service.ChatService) bot.Command {
	return bot.Command{
		Name:        "image",
		Description: "Generate an image from a prompt",
		Run: func(ctx context.Context, inv *bot.Invocation) error {
			prompt := inv.ArgsText()
			if prompt == "" {
				return bot.Usage("Please provide a prompt. Usage: `!image <description>`")
			}

			bot.SignalTyping(ctx, inv.Sink)

			result, err := svc.Respond(ctx, inv.AuthorID, prompt, []ai.Modality{ai.ModalityImage})
			if err != nil {
				return err
			}

			return sendResult(ctx, inv.Sink, result)
		},
	}
}

// Clear 清空对话历史指令
func Clear(svc *service.ChatService) bot.Command {
	return bot.Command{
		Name:        "clear",
		Description: "Clear your chat history",
		Run: func(ctx context.Context, inv *bot.Invocation) error {
			if err := svc.ClearHistory(ctx, inv.AuthorID); err != nil {
				return err
			}
			return inv.Sink.Reply(ctx, "✅ Your chat history has been cleared!")
		},
	}
}

func sendResult(ctx context.Context, sink bot.Sink, result *service.ChatResult) error {
	if result.Text == "" && len(result.Attachments) == 0 {
		return sink.Reply(ctx, "🤔 I don't have a response for that.")
	}
	if len(result.Attachments) > 0 {
		return sink.ReplyWith(ctx, &bot.Reply{Text: result.Text, Attachments: result.Attachments})
	}
	return sink.Reply(ctx, result.Text)
}
