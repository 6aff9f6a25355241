package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	. "github.com/smartystreets/goconvey/convey"

	"rushbot/internal/ai"
	"rushbot/internal/model"
)

// memStore 内存版轮次存储
type memStore struct {
	turns     []model.ChatTurn
	appendErr error
	recentErr error
	clearErr  error
}

func (m *memStore) Append(ctx context.Context, userID, role, content string, metadata *model.TurnMetadata) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.turns = append(m.turns, model.ChatTurn{
		UserID:   userID,
		Role:     role,
		Content:  content,
		Metadata: metadata,
	})
	return nil
}

func (m *memStore) RecentTurns(ctx context.Context, userID string, limit int) ([]model.ChatTurn, error) {
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	var out []model.ChatTurn
	for _, t := range m.turns {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (m *memStore) Clear(ctx context.Context, userID string) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	var kept []model.ChatTurn
	for _, t := range m.turns {
		if t.UserID != userID {
			kept = append(kept, t)
		}
	}
	m.turns = kept
	return nil
}

// memArchive 记录上传次数的替身归档存储
type memArchive struct {
	uploads   int
	uploadErr error
}

func (a *memArchive) Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	if a.uploadErr != nil {
		return "", a.uploadErr
	}
	a.uploads++
	return "https://archive.test/raw/" + key, nil
}

func (a *memArchive) GetPresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	return "https://archive.test/signed/" + key, nil
}

func (a *memArchive) GetStorageType() string { return "test" }

// staticGenerator 回放固定 chunk 序列的替身生成器
type staticGenerator struct {
	chunks    []*ai.Chunk
	streamErr error
	callErr   error
	lastReq   *ai.Request
}

func (g *staticGenerator) GenerateStream(ctx context.Context, req *ai.Request) (*ai.ChunkStream, error) {
	g.lastReq = req
	if g.callErr != nil {
		return nil, g.callErr
	}
	return ai.NewStaticStream(g.chunks, g.streamErr), nil
}

func TestChatService_Respond(t *testing.T) {
	Convey("ChatService.Respond 处理一次提问", t, func() {
		ctx := context.Background()

		Convey("空提问直接拒绝，不触发任何 I/O", func() {
			store := &memStore{}
			gen := &staticGenerator{}
			svc := NewChatService(store, gen, nil, 20, 2000)

			_, err := svc.Respond(ctx, "u1", "   ", nil)
			So(err, ShouldEqual, ErrEmptyPrompt)
			So(store.turns, ShouldBeEmpty)
			So(gen.lastReq, ShouldBeNil)
		})

		Convey("文本片段按序拼接为一条完整回复并落库", func() {
			store := &memStore{}
			gen := &staticGenerator{chunks: []*ai.Chunk{
				{Text: "Hello"},
				{Text: ", "},
				{Text: "world!"},
			}}
			svc := NewChatService(store, gen, nil, 20, 2000)

			result, err := svc.Respond(ctx, "u1", "hi", nil)
			So(err, ShouldBeNil)
			So(result.Text, ShouldEqual, "Hello, world!")
			So(result.Attachments, ShouldBeEmpty)

			// 提问一条 + 回复一条
			So(len(store.turns), ShouldEqual, 2)
			So(store.turns[0].Role, ShouldEqual, model.RoleUser)
			So(store.turns[0].Content, ShouldEqual, "hi")
			So(store.turns[1].Role, ShouldEqual, model.RoleAssistant)
			So(store.turns[1].Content, ShouldEqual, "Hello, world!")
		})

		Convey("空流不落库 assistant 轮次", func() {
			store := &memStore{}
			gen := &staticGenerator{}
			svc := NewChatService(store, gen, nil, 20, 2000)

			result, err := svc.Respond(ctx, "u1", "hi", nil)
			So(err, ShouldBeNil)
			So(result.Text, ShouldEqual, "")
			So(len(store.turns), ShouldEqual, 1) // 只有提问
		})

		Convey("二进制片段逐个生成文件名并落库占位轮次", func() {
			store := &memStore{}
			gen := &staticGenerator{chunks: []*ai.Chunk{
				{Data: []byte{1, 2}, MIMEType: "image/png"},
				{Data: []byte{3, 4}, MIMEType: "image/jpeg"},
			}}
			svc := NewChatService(store, gen, nil, 20, 2000)

			result, err := svc.Respond(ctx, "u1", "draw", nil)
			So(err, ShouldBeNil)
			So(len(result.Attachments), ShouldEqual, 2)
			So(result.Attachments[0].Filename, ShouldEqual, "generated_0.png")
			So(result.Attachments[1].Filename, ShouldEqual, "generated_1.jpg")

			So(len(store.turns), ShouldEqual, 3)
			So(store.turns[1].Content, ShouldEqual, "[image:generated_0.png]")
			So(store.turns[1].Metadata.Type, ShouldEqual, model.TurnTypeImage)
			So(store.turns[2].Content, ShouldEqual, "[image:generated_1.jpg]")
		})

		Convey("文本与二进制混合时文本合并为单条轮次", func() {
			store := &memStore{}
			gen := &staticGenerator{chunks: []*ai.Chunk{
				{Text: "Here you go: "},
				{Data: []byte{9}, MIMEType: "image/png"},
				{Text: "enjoy!"},
			}}
			svc := NewChatService(store, gen, nil, 20, 2000)

			result, err := svc.Respond(ctx, "u1", "go", nil)
			So(err, ShouldBeNil)
			So(result.Text, ShouldEqual, "Here you go: enjoy!")
			So(len(result.Attachments), ShouldEqual, 1)

			// 提问 + 图片占位 + 合并后的文本
			So(len(store.turns), ShouldEqual, 3)
			So(store.turns[2].Content, ShouldEqual, "Here you go: enjoy!")
		})

		Convey("上下文窗口包含历史且新提问在最后", func() {
			store := &memStore{}
			store.turns = []model.ChatTurn{
				{UserID: "u1", Role: model.RoleUser, Content: "earlier question"},
				{UserID: "u1", Role: model.RoleAssistant, Content: "earlier answer"},
				{UserID: "u1", Role: model.RoleAssistant, Content: "[image:generated_0.png]"},
				{UserID: "u2", Role: model.RoleUser, Content: "someone else"},
			}
			gen := &staticGenerator{chunks: []*ai.Chunk{{Text: "ok"}}}
			svc := NewChatService(store, gen, nil, 20, 2000)

			_, err := svc.Respond(ctx, "u1", "new question", nil)
			So(err, ShouldBeNil)

			parts := gen.lastReq.Parts
			// 图片占位轮次与其他用户的轮次都不进入窗口
			So(len(parts), ShouldEqual, 3)
			So(parts[0].Text, ShouldEqual, "earlier question")
			So(parts[1].Text, ShouldEqual, "earlier answer")
			So(parts[2].Role, ShouldEqual, model.RoleUser)
			So(parts[2].Text, ShouldEqual, "new question")
		})

		Convey("提问即使生成失败也已落库", func() {
			store := &memStore{}
			gen := &staticGenerator{callErr: errors.New("upstream down")}
			svc := NewChatService(store, gen, nil, 20, 2000)

			_, err := svc.Respond(ctx, "u1", "hi", nil)
			So(err, ShouldNotBeNil)
			So(len(store.turns), ShouldEqual, 1)
			So(store.turns[0].Content, ShouldEqual, "hi")
		})

		Convey("流中途失败不落库已累积的文本", func() {
			store := &memStore{}
			gen := &staticGenerator{
				chunks:    []*ai.Chunk{{Text: "partial "}},
				streamErr: &ai.GenerationError{Err: errors.New("stream cut")},
			}
			svc := NewChatService(store, gen, nil, 20, 2000)

			_, err := svc.Respond(ctx, "u1", "hi", nil)
			So(err, ShouldNotBeNil)
			var genErr *ai.GenerationError
			So(errors.As(err, &genErr), ShouldBeTrue)
			So(len(store.turns), ShouldEqual, 1) // 只有提问
		})

		Convey("历史读取失败降级为空窗口，不阻断回复", func() {
			store := &memStore{recentErr: errors.New("db down")}
			gen := &staticGenerator{chunks: []*ai.Chunk{{Text: "still works"}}}
			svc := NewChatService(store, gen, nil, 20, 2000)

			result, err := svc.Respond(ctx, "u1", "hi", nil)
			So(err, ShouldBeNil)
			So(result.Text, ShouldEqual, "still works")
			So(len(gen.lastReq.Parts), ShouldEqual, 1)
		})

		Convey("回复文本超过上限被截断，落库保留全文", func() {
			store := &memStore{}
			long := strings.Repeat("a", 2500)
			gen := &staticGenerator{chunks: []*ai.Chunk{{Text: long}}}
			svc := NewChatService(store, gen, nil, 20, 2000)

			result, err := svc.Respond(ctx, "u1", "hi", nil)
			So(err, ShouldBeNil)
			So(len(result.Text), ShouldEqual, 2000)
			So(store.turns[1].Content, ShouldEqual, long)
		})

		Convey("截断按字符计数，不切开多字节字符", func() {
			store := &memStore{}
			long := strings.Repeat("a", 1999) + "中文回复"
			gen := &staticGenerator{chunks: []*ai.Chunk{{Text: long}}}
			svc := NewChatService(store, gen, nil, 20, 2000)

			result, err := svc.Respond(ctx, "u1", "hi", nil)
			So(err, ShouldBeNil)
			So(utf8.ValidString(result.Text), ShouldBeTrue)
			So(utf8.RuneCountInString(result.Text), ShouldEqual, 2000)
			So(result.Text, ShouldEndWith, "中")

			Convey("纯多字节文本同样按 2000 字符截断", func() {
				store := &memStore{}
				gen := &staticGenerator{chunks: []*ai.Chunk{{Text: strings.Repeat("汉", 2500)}}}
				svc := NewChatService(store, gen, nil, 20, 2000)

				result, err := svc.Respond(ctx, "u1", "hi", nil)
				So(err, ShouldBeNil)
				So(utf8.RuneCountInString(result.Text), ShouldEqual, 2000)
			})
		})

		Convey("配置归档时附件带签名下载地址", func() {
			store := &memStore{}
			archive := &memArchive{}
			gen := &staticGenerator{chunks: []*ai.Chunk{
				{Data: []byte{1, 2}, MIMEType: "image/png"},
			}}
			svc := NewChatService(store, gen, archive, 20, 2000)

			result, err := svc.Respond(ctx, "u1", "draw", nil)
			So(err, ShouldBeNil)
			So(len(result.Attachments), ShouldEqual, 1)
			So(result.Attachments[0].URL, ShouldStartWith, "https://archive.test/signed/attachments/u1/")
			So(result.Attachments[0].URL, ShouldEndWith, "/generated_0.png")
			So(archive.uploads, ShouldEqual, 1)

			Convey("归档失败不阻断回复，附件不带 URL", func() {
				archive := &memArchive{uploadErr: errors.New("bucket gone")}
				svc := NewChatService(&memStore{}, gen, archive, 20, 2000)

				result, err := svc.Respond(ctx, "u1", "draw", nil)
				So(err, ShouldBeNil)
				So(len(result.Attachments), ShouldEqual, 1)
				So(result.Attachments[0].URL, ShouldEqual, "")
			})
		})
	})
}

func TestChatService_ClearHistory(t *testing.T) {
	Convey("ChatService.ClearHistory 清空用户历史", t, func() {
		ctx := context.Background()

		Convey("只清空目标用户", func() {
			store := &memStore{turns: []model.ChatTurn{
				{UserID: "u1", Role: model.RoleUser, Content: "a"},
				{UserID: "u2", Role: model.RoleUser, Content: "b"},
			}}
			svc := NewChatService(store, nil, nil, 20, 2000)

			So(svc.ClearHistory(ctx, "u1"), ShouldBeNil)
			So(len(store.turns), ShouldEqual, 1)
			So(store.turns[0].UserID, ShouldEqual, "u2")
		})

		Convey("存储失败必须向上传播", func() {
			store := &memStore{clearErr: errors.New("db down")}
			svc := NewChatService(store, nil, nil, 20, 2000)

			So(svc.ClearHistory(ctx, "u1"), ShouldNotBeNil)
		})
	})
}
