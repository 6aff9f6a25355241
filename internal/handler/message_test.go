package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	"rushbot/internal/bot"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	registry, err := bot.NewRegistry(
		bot.Command{
			Name:        "echo",
			Description: "echo back the arguments",
			Run: func(ctx context.Context, inv *bot.Invocation) error {
				return inv.Sink.ReplyWith(ctx, &bot.Reply{
					Text: inv.ArgsText(),
					Attachments: []bot.Attachment{
						{Filename: "generated_0.png", ContentType: "image/png", Data: []byte{1, 2, 3}},
					},
				})
			},
		},
	)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	dispatcher := bot.NewDispatcher(registry, "!", func(string) bool { return false })

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/v1/messages", NewMessageHandler(dispatcher).Handle)
	return router
}

func postMessage(router *gin.Engine, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestMessageHandler_Handle(t *testing.T) {
	Convey("MessageHandler.Handle 处理入站消息", t, func() {
		router := newTestRouter(t)

		Convey("命中指令时返回回复与附件", func() {
			rec := postMessage(router, MessageRequest{AuthorID: "u1", Content: "!echo hello"})
			So(rec.Code, ShouldEqual, http.StatusOK)

			var resp MessageResponse
			So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Handled, ShouldBeTrue)
			So(len(resp.Replies), ShouldEqual, 1)
			So(resp.Replies[0].Text, ShouldEqual, "hello")
			So(len(resp.Replies[0].Attachments), ShouldEqual, 1)
			So(resp.Replies[0].Attachments[0].Filename, ShouldEqual, "generated_0.png")
			So(resp.Replies[0].Attachments[0].Data, ShouldEqual, "AQID") // base64(1,2,3)
		})

		Convey("普通消息返回 handled=false", func() {
			rec := postMessage(router, MessageRequest{AuthorID: "u1", Content: "hello there"})
			So(rec.Code, ShouldEqual, http.StatusOK)

			var resp MessageResponse
			So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Handled, ShouldBeFalse)
			So(resp.Replies, ShouldBeEmpty)
		})

		Convey("缺少必填字段返回 400", func() {
			rec := postMessage(router, map[string]string{"content": "!echo hi"})
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}
