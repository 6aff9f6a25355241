package execx

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTimeout 未显式配置时的单次执行墙钟上限
const DefaultTimeout = 10 * time.Second

// DefaultMaxOutput 未显式配置时的输出字节上限 (1 MiB)
const DefaultMaxOutput = 1 << 20

// Runner 外部进程执行器
// 所有 shell-out 都经过它：统一超时、统一输出截断，返回结构化结果。
type Runner struct {
	timeout   time.Duration
	maxOutput int
}

// NewRunner 创建执行器
func NewRunner(timeout time.Duration, maxOutput int) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxOutput <= 0 {
		maxOutput = DefaultMaxOutput
	}
	return &Runner{timeout: timeout, maxOutput: maxOutput}
}

// Result 一次执行的结构化结果
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
	TimedOut  bool
	Duration  time.Duration
}

// Output 合并后的输出（stdout 在前，stderr 在后）
func (r *Result) Output() string {
	switch {
	case r.Stdout != "" && r.Stderr != "":
		return r.Stdout + "\n" + r.Stderr
	case r.Stderr != "":
		return r.Stderr
	default:
		return r.Stdout
	}
}

// Run 执行单个程序及其参数
// 超时或非零退出不作为 error 返回，体现在 Result 里；error 仅表示进程
// 无法启动（可执行文件缺失等）。
func (r *Runner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	return r.run(ctx, name, name, args)
}

// RunShell 通过 sh -c 执行一行 shell 命令（用于需要管道的调用方）
func (r *Runner) RunShell(ctx context.Context, command string) (*Result, error) {
	return r.run(ctx, command, "sh", []string{"-c", command})
}

// RunWithTimeout 用调用方指定的超时执行，覆盖默认值
func (r *Runner) RunWithTimeout(ctx context.Context, timeout time.Duration, name string, args ...string) (*Result, error) {
	sub := &Runner{timeout: timeout, maxOutput: r.maxOutput}
	return sub.Run(ctx, name, args...)
}

func (r *Runner) run(ctx context.Context, label, name string, args []string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	outW := &capWriter{w: &stdout, limit: r.maxOutput}
	errW := &capWriter{w: &stderr, limit: r.maxOutput}
	cmd.Stdout = outW
	cmd.Stderr = errW

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	res := &Result{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Duration:  elapsed,
		Truncated: outW.truncated || errW.truncated,
	}

	if ctx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
		res.ExitCode = -1
		log.Warn().Str("cmd", label).Dur("elapsed", elapsed).Msg("command timed out")
		return res, nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		// 进程没能启动
		return nil, err
	}

	return res, nil
}

// capWriter 带上限的写入器，超出部分静默丢弃
type capWriter struct {
	w         *bytes.Buffer
	limit     int
	truncated bool
}

func (c *capWriter) Write(p []byte) (int, error) {
	remain := c.limit - c.w.Len()
	if remain <= 0 {
		c.truncated = true
		return len(p), nil
	}
	if len(p) > remain {
		c.w.Write(p[:remain])
		c.truncated = true
		return len(p), nil
	}
	return c.w.Write(p)
}
