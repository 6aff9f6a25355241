package bot

import (
	"context"
	"fmt"
)

// Command 一个具名指令
// Run 返回 *ValidationError 时用户收到用法提示，返回其他错误时收到
// 统一的失败通知；错误不会越过分发边界向上传播。
type Command struct {
	Name        string
	Description string
	AdminOnly   bool
	Run         func(ctx context.Context, inv *Invocation) error
}

// Invocation 一次指令调用
type Invocation struct {
	AuthorID string
	Args     []string
	Sink     Sink
}

// ArgsText 参数拼接回一行文本
func (inv *Invocation) ArgsText() string {
	text := ""
	for i, arg := range inv.Args {
		if i > 0 {
			text += " "
		}
		text += arg
	}
	return text
}

// ValidationError 参数校验失败，Hint 直接回给用户
type ValidationError struct {
	Hint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Hint)
}

// Usage 构造用法提示错误
func Usage(format string, args ...any) *ValidationError {
	return &ValidationError{Hint: fmt.Sprintf(format, args...)}
}
