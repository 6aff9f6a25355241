package handler

import (
	"context"
	"sync"

	"rushbot/internal/bot"
)

// httpSink 把一次请求内的所有回复累积起来，随 HTTP 响应一次性返回
// 请求-响应式传输没有输入中提示和消息原地更新的概念，相应能力不实现。
type httpSink struct {
	mu      sync.Mutex
	replies []bot.Reply
}

func newHTTPSink() *httpSink {
	return &httpSink{}
}

func (s *httpSink) Reply(ctx context.Context, text string) error {
	return s.ReplyWith(ctx, &bot.Reply{Text: text})
}

func (s *httpSink) ReplyWith(ctx context.Context, reply *bot.Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, *reply)
	return nil
}

func (s *httpSink) collected() []bot.Reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]bot.Reply, len(s.replies))
	copy(out, s.replies)
	return out
}
