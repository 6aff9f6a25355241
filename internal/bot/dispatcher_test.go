package bot

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// recordSink 记录所有回复的替身输出端
type recordSink struct {
	texts []string
}

func (s *recordSink) Reply(ctx context.Context, text string) error {
	s.texts = append(s.texts, text)
	return nil
}

func (s *recordSink) ReplyWith(ctx context.Context, reply *Reply) error {
	s.texts = append(s.texts, reply.Text)
	return nil
}

func TestParseCommand(t *testing.T) {
	Convey("ParseCommand 解析前缀指令", t, func() {
		Convey("前缀 + 指令名 + 参数", func() {
			name, args, ok := ParseCommand("!", "!container logs web 50")
			So(ok, ShouldBeTrue)
			So(name, ShouldEqual, "container")
			So(args, ShouldResemble, []string{"logs", "web", "50"})
		})

		Convey("指令名统一转小写", func() {
			name, _, ok := ParseCommand("!", "!PING")
			So(ok, ShouldBeTrue)
			So(name, ShouldEqual, "ping")
		})

		Convey("多余空白被压缩", func() {
			name, args, ok := ParseCommand("!", "!chat   hello    world")
			So(ok, ShouldBeTrue)
			So(name, ShouldEqual, "chat")
			So(args, ShouldResemble, []string{"hello", "world"})
		})

		Convey("非前缀消息不命中", func() {
			_, _, ok := ParseCommand("!", "hello there")
			So(ok, ShouldBeFalse)
		})

		Convey("只有前缀没有指令名不命中", func() {
			_, _, ok := ParseCommand("!", "!")
			So(ok, ShouldBeFalse)

			_, _, ok = ParseCommand("!", "!   ")
			So(ok, ShouldBeFalse)
		})

		Convey("多字符前缀", func() {
			name, _, ok := ParseCommand("bot.", "bot.status")
			So(ok, ShouldBeTrue)
			So(name, ShouldEqual, "status")
		})
	})
}

func TestDispatcher_Dispatch(t *testing.T) {
	Convey("Dispatcher.Dispatch 分发指令", t, func() {
		ctx := context.Background()
		isAdmin := func(userID string) bool { return userID == "admin-1" }

		var gotInv *Invocation
		registry, err := NewRegistry(
			Command{Name: "echo", Run: func(ctx context.Context, inv *Invocation) error {
				gotInv = inv
				return inv.Sink.Reply(ctx, inv.ArgsText())
			}},
			Command{Name: "boom", Run: func(ctx context.Context, inv *Invocation) error {
				return errors.New("internal detail that must not leak")
			}},
			Command{Name: "panics", Run: func(ctx context.Context, inv *Invocation) error {
				panic("boom")
			}},
			Command{Name: "strict", Run: func(ctx context.Context, inv *Invocation) error {
				return Usage("Usage: `!strict <arg>`")
			}},
			Command{Name: "locked", AdminOnly: true, Run: func(ctx context.Context, inv *Invocation) error {
				return inv.Sink.Reply(ctx, "unlocked")
			}},
		)
		So(err, ShouldBeNil)
		d := NewDispatcher(registry, "!", isAdmin)

		Convey("普通消息不处理", func() {
			sink := &recordSink{}
			handled := d.Dispatch(ctx, Message{AuthorID: "u1", Content: "just chatting"}, sink)
			So(handled, ShouldBeFalse)
			So(sink.texts, ShouldBeEmpty)
		})

		Convey("未注册的指令静默忽略", func() {
			sink := &recordSink{}
			handled := d.Dispatch(ctx, Message{AuthorID: "u1", Content: "!unknown"}, sink)
			So(handled, ShouldBeFalse)
			So(sink.texts, ShouldBeEmpty)
		})

		Convey("命中指令并传递参数", func() {
			sink := &recordSink{}
			handled := d.Dispatch(ctx, Message{AuthorID: "u1", Content: "!echo hello world"}, sink)
			So(handled, ShouldBeTrue)
			So(gotInv.AuthorID, ShouldEqual, "u1")
			So(gotInv.Args, ShouldResemble, []string{"hello", "world"})
			So(sink.texts, ShouldResemble, []string{"hello world"})
		})

		Convey("处理函数出错时只回统一失败通知", func() {
			sink := &recordSink{}
			handled := d.Dispatch(ctx, Message{AuthorID: "u1", Content: "!boom"}, sink)
			So(handled, ShouldBeTrue)
			So(sink.texts, ShouldResemble, []string{genericFailureNotice})
		})

		Convey("处理函数 panic 不会击穿分发器", func() {
			sink := &recordSink{}
			handled := d.Dispatch(ctx, Message{AuthorID: "u1", Content: "!panics"}, sink)
			So(handled, ShouldBeTrue)
			So(sink.texts, ShouldResemble, []string{genericFailureNotice})

			// 后续分发不受影响
			sink2 := &recordSink{}
			handled = d.Dispatch(ctx, Message{AuthorID: "u1", Content: "!echo ok"}, sink2)
			So(handled, ShouldBeTrue)
			So(sink2.texts, ShouldResemble, []string{"ok"})
		})

		Convey("参数校验失败时回用法提示", func() {
			sink := &recordSink{}
			handled := d.Dispatch(ctx, Message{AuthorID: "u1", Content: "!strict"}, sink)
			So(handled, ShouldBeTrue)
			So(sink.texts, ShouldResemble, []string{"Usage: `!strict <arg>`"})
		})

		Convey("非管理员调用管理指令被拒绝", func() {
			sink := &recordSink{}
			handled := d.Dispatch(ctx, Message{AuthorID: "u1", Content: "!locked"}, sink)
			So(handled, ShouldBeTrue)
			So(sink.texts, ShouldResemble, []string{accessDeniedNotice})
		})

		Convey("管理员调用管理指令放行", func() {
			sink := &recordSink{}
			handled := d.Dispatch(ctx, Message{AuthorID: "admin-1", Content: "!locked"}, sink)
			So(handled, ShouldBeTrue)
			So(sink.texts, ShouldResemble, []string{"unlocked"})
		})
	})
}
