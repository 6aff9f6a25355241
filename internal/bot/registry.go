package bot

import (
	"fmt"
	"sort"
	"strings"
)

// Registry 指令注册表
// 进程启动时一次性构建，之后只读；指令名不区分大小写。
// 重名是配置错误，直接让启动失败而不是悄悄覆盖。
type Registry struct {
	commands map[string]Command
}

// NewRegistry 从指令清单构建注册表
func NewRegistry(cmds ...Command) (*Registry, error) {
	commands := make(map[string]Command, len(cmds))
	for _, cmd := range cmds {
		name := strings.ToLower(strings.TrimSpace(cmd.Name))
		if name == "" {
			return nil, fmt.Errorf("command with empty name")
		}
		if cmd.Run == nil {
			return nil, fmt.Errorf("command %q has no run function", name)
		}
		if _, exists := commands[name]; exists {
			return nil, fmt.Errorf("duplicate command name %q", name)
		}
		commands[name] = cmd
	}
	return &Registry{commands: commands}, nil
}

// Get 按名称查找指令（不区分大小写）
func (r *Registry) Get(name string) (Command, bool) {
	cmd, ok := r.commands[strings.ToLower(name)]
	return cmd, ok
}

// List 返回全部指令，按名称排序（注册顺序不影响行为）
func (r *Registry) List() []Command {
	out := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len 指令数量
func (r *Registry) Len() int {
	return len(r.commands)
}
