package ai

import (
	"context"
	"errors"
	"io"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"rushbot/internal/config"
	"rushbot/internal/model"
)

// Generator 生成服务边界
// service 层依赖该接口，测试时以假实现替换。
type Generator interface {
	// GenerateStream 发起一次生成请求，返回只能按序消费一遍的响应流
	GenerateStream(ctx context.Context, req *Request) (*ChunkStream, error)
}

// Client AI 能力层客户端
// 职责: 封装对话模型与图片生成，暴露统一的 chunk 流
type Client struct {
	cfg       *config.AIConfig
	chatModel einomodel.ChatModel
	imageGen  *ImageClient
}

// NewClient 创建 AI 客户端
// imageGen 可为 nil（未配置图片生成时图片模态直接报错）。
func NewClient(ctx context.Context, cfg *config.AIConfig, imageGen *ImageClient) (*Client, error) {
	chatModel, err := NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:       cfg,
		chatModel: chatModel,
		imageGen:  imageGen,
	}, nil
}

// DefaultModalities 配置的默认响应模态
func (c *Client) DefaultModalities() []Modality {
	return ParseModalities(c.cfg.Modalities)
}

// GenerateStream 发起生成请求
// 文本增量来自对话模型的流式输出；图片模态在文本流结束后由图片客户端补充
// 为二进制 chunk，合并进同一条单遍消费的流。
func (c *Client) GenerateStream(ctx context.Context, req *Request) (*ChunkStream, error) {
	if req.wantsImage() && c.imageGen == nil {
		return nil, &GenerationError{Err: errors.New("image generation not configured")}
	}

	var sr *schema.StreamReader[*schema.Message]
	if req.wantsText() {
		var err error
		sr, err = c.chatModel.Stream(ctx, buildMessages(req.Parts))
		if err != nil {
			return nil, &GenerationError{Err: err}
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	stream := newChunkStream(cancel)

	go func() {
		defer stream.finish()
		if sr != nil {
			defer sr.Close()
			for {
				msg, err := sr.Recv()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					stream.send(ctx, streamItem{err: &GenerationError{Err: err}})
					return
				}
				if msg.Content == "" {
					continue
				}
				if !stream.send(ctx, streamItem{chunk: &Chunk{Text: msg.Content}}) {
					return
				}
			}
		}

		if req.wantsImage() {
			data, mimeType, err := c.imageGen.Generate(ctx, req.LastUserText())
			if err != nil {
				stream.send(ctx, streamItem{err: &GenerationError{Err: err}})
				return
			}
			stream.send(ctx, streamItem{chunk: &Chunk{Data: data, MIMEType: mimeType}})
		}
	}()

	log.Debug().
		Str("provider", c.cfg.Provider).
		Str("model", c.cfg.Model).
		Int("parts", len(req.Parts)).
		Msg("generation request issued")

	return stream, nil
}

// buildMessages 把角色标注的片段转为 eino 消息序列
func buildMessages(parts []Part) []*schema.Message {
	messages := make([]*schema.Message, 0, len(parts))
	for _, p := range parts {
		if p.Role == model.RoleAssistant {
			messages = append(messages, schema.AssistantMessage(p.Text, nil))
		} else {
			messages = append(messages, schema.UserMessage(p.Text))
		}
	}
	return messages
}
