package docker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rushbot/internal/pkg/execx"
)

// ErrDockerUnavailable 底层 docker CLI 调用失败
var ErrDockerUnavailable = errors.New("docker unavailable")

// ErrContainerNotFound 容器不存在
var ErrContainerNotFound = errors.New("container not found")

// Client Docker CLI 封装
// 不依赖 docker daemon API，直接包装 docker 命令，与宿主机部署方式一致。
type Client struct {
	runner *execx.Runner
}

// NewClient 创建 Docker 客户端
func NewClient(runner *execx.Runner) *Client {
	return &Client{runner: runner}
}

// List 列出所有容器（含已停止）
func (c *Client) List(ctx context.Context) (string, error) {
	res, err := c.runner.Run(ctx, "docker", "ps", "-a",
		"--format", "table {{.Names}}\t{{.Status}}\t{{.Image}}")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDockerUnavailable, err)
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%w: %s", ErrDockerUnavailable, strings.TrimSpace(res.Stderr))
	}
	return res.Stdout, nil
}

// Start 启动容器
func (c *Client) Start(ctx context.Context, name string) error {
	return c.simple(ctx, "start", name)
}

// Stop 停止容器
func (c *Client) Stop(ctx context.Context, name string) error {
	return c.simple(ctx, "stop", name)
}

// Restart 重启容器
func (c *Client) Restart(ctx context.Context, name string) error {
	return c.simple(ctx, "restart", name)
}

// Status 查询容器状态与启动时间
func (c *Client) Status(ctx context.Context, name string) (state, startedAt string, err error) {
	res, err := c.runner.Run(ctx, "docker", "inspect", name, "--format", "{{.State.Status}}|{{.State.StartedAt}}")
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrDockerUnavailable, err)
	}
	if res.ExitCode != 0 {
		return "", "", ErrContainerNotFound
	}

	parts := strings.SplitN(strings.TrimSpace(res.Stdout), "|", 2)
	state = parts[0]
	if len(parts) == 2 {
		startedAt = parts[1]
	}
	return state, startedAt, nil
}

// Logs 获取最近 tail 行日志
func (c *Client) Logs(ctx context.Context, name string, tail int) (string, error) {
	res, err := c.runner.Run(ctx, "docker", "logs", "--tail", fmt.Sprintf("%d", tail), name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDockerUnavailable, err)
	}
	if res.ExitCode != 0 {
		return "", ErrContainerNotFound
	}
	// docker 会把容器的 stderr 输出也接到日志里
	return res.Output(), nil
}

// Stats 所有运行中容器的资源占用（单次采样）
func (c *Client) Stats(ctx context.Context) (string, error) {
	res, err := c.runner.Run(ctx, "docker", "stats", "--no-stream",
		"--format", "table {{.Name}}\t{{.CPUPerc}}\t{{.MemUsage}}\t{{.NetIO}}")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDockerUnavailable, err)
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%w: %s", ErrDockerUnavailable, strings.TrimSpace(res.Stderr))
	}
	return res.Stdout, nil
}

func (c *Client) simple(ctx context.Context, action, name string) error {
	res, err := c.runner.Run(ctx, "docker", action, name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDockerUnavailable, err)
	}
	if res.ExitCode != 0 {
		return ErrContainerNotFound
	}
	return nil
}
