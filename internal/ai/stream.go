package ai

import (
	"context"
	"fmt"
	"io"
)

// GenerationError AI 服务调用或流消费失败
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Chunk 响应流中的一个增量单元
// 文本片段与二进制负载二选一：Data 非空时为二进制（附带声明的 MIME 类型）。
type Chunk struct {
	Text     string
	Data     []byte
	MIMEType string
}

// IsBinary 是否为二进制负载
func (c *Chunk) IsBinary() bool {
	return len(c.Data) > 0
}

type streamItem struct {
	chunk *Chunk
	err   error
}

// ChunkStream 单遍消费的响应流
// 按到达顺序 Recv 直到 io.EOF；不可重置，不可重复消费。
type ChunkStream struct {
	ch     chan streamItem
	cancel context.CancelFunc
}

func newChunkStream(cancel context.CancelFunc) *ChunkStream {
	return &ChunkStream{
		ch:     make(chan streamItem, 8),
		cancel: cancel,
	}
}

// NewStaticStream 从既有内容构造响应流
// err 非 nil 时在所有 chunk 之后作为流错误送出。主要服务于替身实现。
func NewStaticStream(chunks []*Chunk, err error) *ChunkStream {
	s := newChunkStream(nil)
	go func() {
		defer s.finish()
		for _, c := range chunks {
			s.ch <- streamItem{chunk: c}
		}
		if err != nil {
			s.ch <- streamItem{err: err}
		}
	}()
	return s
}

// Recv 取下一个 chunk；流结束返回 io.EOF，中途失败返回 *GenerationError
func (s *ChunkStream) Recv() (*Chunk, error) {
	item, ok := <-s.ch
	if !ok {
		return nil, io.EOF
	}
	if item.err != nil {
		return nil, item.err
	}
	return item.chunk, nil
}

// Close 放弃剩余内容并释放底层资源
func (s *ChunkStream) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	// 排空生产者，避免其阻塞在发送上
	go func() {
		for range s.ch {
		}
	}()
}

// send 生产者写入；ctx 取消时返回 false
func (s *ChunkStream) send(ctx context.Context, item streamItem) bool {
	select {
	case <-ctx.Done():
		return false
	case s.ch <- item:
		return true
	}
}

// finish 生产者结束写入
func (s *ChunkStream) finish() {
	close(s.ch)
}
