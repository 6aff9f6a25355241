package bot

import "context"

// Message 入站消息
type Message struct {
	AuthorID string // 外部平台的用户标识
	Content  string // 原始文本
}

// Attachment 出站二进制附件
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
	URL         string // 归档存储 URL（未配置归档时为空）
}

// Reply 出站回复
type Reply struct {
	Text        string
	Attachments []Attachment
}

// Sink 输出端能力接口
// 每种传输各自实现；可选能力拆成独立接口，调用方做类型断言后降级。
type Sink interface {
	// Reply 发送纯文本回复
	Reply(ctx context.Context, text string) error

	// ReplyWith 发送带附件的回复
	ReplyWith(ctx context.Context, reply *Reply) error
}

// ActivitySignaler 可选能力：输入中提示
type ActivitySignaler interface {
	SignalTyping(ctx context.Context) error
}

// LiveUpdater 可选能力：可原地更新的消息（用于滚动状态展示）
type LiveUpdater interface {
	StartLive(ctx context.Context, text string) (LiveMessage, error)
}

// LiveMessage 一条可反复更新的已发送消息
type LiveMessage interface {
	Update(ctx context.Context, text string) error
}

// DirectMessenger 可选能力：给任意用户发私信
type DirectMessenger interface {
	SendDirect(ctx context.Context, userID, text string) error
}

// SignalTyping 尽力而为地发出输入中提示，传输不支持时静默跳过
func SignalTyping(ctx context.Context, sink Sink) {
	if signaler, ok := sink.(ActivitySignaler); ok {
		_ = signaler.SignalTyping(ctx)
	}
}
