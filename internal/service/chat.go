package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"rushbot/internal/ai"
	"rushbot/internal/bot"
	"rushbot/internal/model"
	"rushbot/internal/pkg/id"
	"rushbot/internal/pkg/storage"
)

// ErrEmptyPrompt 空提问在任何 I/O 之前被拒绝
var ErrEmptyPrompt = errors.New("prompt must not be empty")

// archiveURLTTL 附件签名下载地址的有效期
const archiveURLTTL = 24 * time.Hour

// TurnStore 对话轮次存储边界
type TurnStore interface {
	Append(ctx context.Context, userID, role, content string, metadata *model.TurnMetadata) error
	RecentTurns(ctx context.Context, userID string, limit int) ([]model.ChatTurn, error)
	Clear(ctx context.Context, userID string) error
}

// ChatResult 一次生成的最终产出
type ChatResult struct {
	Text        string
	Attachments []bot.Attachment
}

// ChatService 对话服务
// 负责窗口重建、发起生成、按序消费响应流、落库新轮次。
type ChatService struct {
	store      TurnStore
	generator  ai.Generator
	archive    storage.Storage // 可为 nil：不归档附件
	window     int             // 上下文窗口大小
	replyLimit int             // 回复文本上限
}

// NewChatService 创建对话服务
func NewChatService(store TurnStore, generator ai.Generator, archive storage.Storage, window, replyLimit int) *ChatService {
	return &ChatService{
		store:      store,
		generator:  generator,
		archive:    archive,
		window:     window,
		replyLimit: replyLimit,
	}
}

// Respond 处理一次提问
// 提问在发起生成之前就已落库：即使后续生成失败，历史里也保留这条提问。
// 单条轮次落库失败只记日志，不中断对用户的回复。
func (s *ChatService) Respond(ctx context.Context, userID, prompt string, modalities []ai.Modality) (*ChatResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	if err := s.store.Append(ctx, userID, model.RoleUser, prompt, nil); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to persist user prompt")
	}

	req := &ai.Request{
		Parts:      s.buildParts(ctx, userID, prompt),
		Modalities: modalities,
	}

	stream, err := s.generator.GenerateStream(ctx, req)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	return s.consume(ctx, userID, stream)
}

// ClearHistory 清空用户历史；失败必须让调用方感知（这是 clear 指令的全部意义）
func (s *ChatService) ClearHistory(ctx context.Context, userID string) error {
	return s.store.Clear(ctx, userID)
}

// buildParts 重建上下文窗口并把新提问放到最后
// 窗口里的图片占位轮次不进入模型输入，但仍留在持久日志中。
// 历史读取失败降级为空窗口，仅记日志。
func (s *ChatService) buildParts(ctx context.Context, userID, prompt string) []ai.Part {
	turns, err := s.store.RecentTurns(ctx, userID, s.window)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to load conversation window")
		turns = nil
	}

	parts := make([]ai.Part, 0, len(turns)+1)
	for _, turn := range turns {
		if turn.Content == "" || !turn.IsText() {
			continue
		}
		parts = append(parts, ai.Part{Role: turn.Role, Text: turn.Content})
	}

	// 新提问恒为最后一个片段
	// RecentTurns 已包含刚落库的这条提问时去掉它，避免重复
	if len(parts) > 0 && parts[len(parts)-1].Role == model.RoleUser && parts[len(parts)-1].Text == prompt {
		parts = parts[:len(parts)-1]
	}
	parts = append(parts, ai.Part{Role: model.RoleUser, Text: prompt})

	return parts
}

// consume 按到达顺序消费响应流直到耗尽
// 二进制 chunk 逐个落库并收集为附件；文本 chunk 累积，流结束后整体落库为
// 单条 assistant 轮次。中途失败不落库已累积的文本。
func (s *ChatService) consume(ctx context.Context, userID string, stream *ai.ChunkStream) (*ChatResult, error) {
	var text strings.Builder
	var attachments []bot.Attachment
	fileIndex := 0

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if chunk.IsBinary() {
			attachments = append(attachments, s.acceptBinary(ctx, userID, fileIndex, chunk))
			fileIndex++
			continue
		}

		text.WriteString(chunk.Text)
	}

	full := text.String()
	if full != "" {
		if err := s.store.Append(ctx, userID, model.RoleAssistant, full, nil); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("failed to persist assistant reply")
		}
	}

	return &ChatResult{
		Text:        truncate(full, s.replyLimit),
		Attachments: attachments,
	}, nil
}

// acceptBinary 处理一个二进制 chunk：命名、落库占位轮次、可选归档
func (s *ChatService) acceptBinary(ctx context.Context, userID string, index int, chunk *ai.Chunk) bot.Attachment {
	filename := fmt.Sprintf("generated_%d.%s", index, ai.ExtensionByMIME(chunk.MIMEType))

	metadata := &model.TurnMetadata{Type: model.TurnTypeImage, Filename: filename}
	if err := s.store.Append(ctx, userID, model.RoleAssistant, model.AttachmentPlaceholder(filename), metadata); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("filename", filename).Msg("failed to persist attachment turn")
	}

	att := bot.Attachment{
		Filename:    filename,
		ContentType: chunk.MIMEType,
		Data:        chunk.Data,
	}

	if s.archive != nil {
		key := fmt.Sprintf("attachments/%s/%s/%s", userID, id.Short(), filename)
		url, err := s.archive.Upload(ctx, key, bytes.NewReader(chunk.Data), chunk.MIMEType)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to archive attachment")
		} else {
			// 归档桶通常不公开，优先给用户签名下载地址
			if signed, err := s.archive.GetPresignedDownloadURL(ctx, key, archiveURLTTL); err == nil {
				url = signed
			} else {
				log.Warn().Err(err).Str("key", key).Msg("failed to presign attachment url")
			}
			att.URL = url
		}
	}

	return att
}

// truncate 按字符数截断，不在多字节字符中间切开
func truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit])
}
