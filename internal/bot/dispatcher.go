package bot

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
)

// 边界处统一的失败通知，与具体错误解耦
const genericFailureNotice = "There was an error executing that command."

const accessDeniedNotice = "❌ Access denied. This command requires administrator privileges."

// Dispatcher 指令分发器
// 除启动时构建的只读注册表外不持有可变状态，可被多条入站消息并发调用。
type Dispatcher struct {
	registry *Registry
	prefix   string
	isAdmin  func(userID string) bool
}

// NewDispatcher 创建分发器
func NewDispatcher(registry *Registry, prefix string, isAdmin func(string) bool) *Dispatcher {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &Dispatcher{
		registry: registry,
		prefix:   prefix,
		isAdmin:  isAdmin,
	}
}

// ParseCommand 从原始文本解析指令名与参数
// 非前缀消息返回 ok=false；指令名小写化，其余按空白切分为参数。
func ParseCommand(prefix, content string) (name string, args []string, ok bool) {
	if !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}

	fields := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(fields) == 0 {
		return "", nil, false
	}

	return strings.ToLower(fields[0]), fields[1:], true
}

// Dispatch 处理一条入站消息
// 返回值表示消息是否命中了某个指令；未命中（非指令或未知指令）静默忽略。
// 指令执行中的 error 与 panic 都在此边界被拦下，不影响其他调用。
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message, sink Sink) bool {
	name, args, ok := ParseCommand(d.prefix, msg.Content)
	if !ok {
		return false
	}

	cmd, found := d.registry.Get(name)
	if !found {
		log.Debug().Str("command", name).Str("author", msg.AuthorID).Msg("unknown command ignored")
		return false
	}

	if cmd.AdminOnly && !d.isAdmin(msg.AuthorID) {
		log.Warn().Str("command", name).Str("author", msg.AuthorID).Msg("admin command denied")
		if err := sink.Reply(ctx, accessDeniedNotice); err != nil {
			log.Error().Err(err).Str("command", name).Msg("failed to send denial reply")
		}
		return true
	}

	d.invoke(ctx, cmd, &Invocation{AuthorID: msg.AuthorID, Args: args, Sink: sink})
	return true
}

func (d *Dispatcher) invoke(ctx context.Context, cmd Command, inv *Invocation) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("command", cmd.Name).
				Str("author", inv.AuthorID).
				Msg("command panicked")
			d.notifyFailure(ctx, inv.Sink, cmd.Name)
		}
	}()

	err := cmd.Run(ctx, inv)
	if err == nil {
		return
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		if rerr := inv.Sink.Reply(ctx, validationErr.Hint); rerr != nil {
			log.Error().Err(rerr).Str("command", cmd.Name).Msg("failed to send usage hint")
		}
		return
	}

	log.Error().
		Err(err).
		Str("command", cmd.Name).
		Str("author", inv.AuthorID).
		Msg("command failed")
	d.notifyFailure(ctx, inv.Sink, cmd.Name)
}

func (d *Dispatcher) notifyFailure(ctx context.Context, sink Sink, command string) {
	if err := sink.Reply(ctx, genericFailureNotice); err != nil {
		log.Error().Err(err).Str("command", command).Msg("failed to send failure notice")
	}
}
