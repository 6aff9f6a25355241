package command

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"rushbot/internal/bot"
	"rushbot/internal/pkg/execx"
)

const (
	subfinderTimeout  = 60 * time.Second
	subfinderMaxLines = 50
)

var domainPattern = regexp.MustCompile(`^(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)

// Subfinder 子域名枚举指令（管理员）
func Subfinder(runner *execx.Runner) bot.Command {
	return bot.Command{
		Name:        "subfinder",
		Description: "Enumerate subdomains of a domain",
		AdminOnly:   true,
		Run: func(ctx context.Context, inv *bot.Invocation) error {
			if len(inv.Args) == 0 {
				return bot.Usage("Please provide a domain. Usage: `!subfinder <domain>`")
			}
			domain := strings.ToLower(inv.Args[0])
			if !domainPattern.MatchString(domain) {
				return bot.Usage("`%s` doesn't look like a valid domain.", inv.Args[0])
			}

			bot.SignalTyping(ctx, inv.Sink)
			if err := inv.Sink.Reply(ctx, fmt.Sprintf("🔍 Enumerating subdomains of **%s**...", domain)); err != nil {
				return err
			}

			res, err := runner.RunWithTimeout(ctx, subfinderTimeout, "subfinder", "-d", domain, "-silent")
			if err != nil {
				return err
			}
			if res.TimedOut {
				return inv.Sink.Reply(ctx, "⏱️ Subdomain enumeration timed out.")
			}
			if res.ExitCode != 0 {
				return inv.Sink.Reply(ctx, "❌ Enumeration failed. Is `subfinder` installed?")
			}

			subdomains := dedupeLines(res.Stdout)
			if len(subdomains) == 0 {
				return inv.Sink.Reply(ctx, fmt.Sprintf("No subdomains found for **%s**.", domain))
			}

			shown := subdomains
			note := ""
			if len(shown) > subfinderMaxLines {
				shown = shown[:subfinderMaxLines]
				note = fmt.Sprintf("\n(showing first %d of %d)", subfinderMaxLines, len(subdomains))
			}

			return inv.Sink.Reply(ctx, fmt.Sprintf("🌐 **%d subdomains for %s**\n%s%s",
				len(subdomains), domain, codeBlock(strings.Join(shown, "\n")), note))
		},
	}
}

func dedupeLines(s string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	sort.Strings(out)
	return out
}
