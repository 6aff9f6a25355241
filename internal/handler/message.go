package handler

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"rushbot/internal/bot"
	"rushbot/internal/pkg/ctxutil"
)

// MessageHandler 入站消息处理器
// 网关客户端（各平台适配器）把用户消息 POST 到这里，指令回复随响应返回。
type MessageHandler struct {
	dispatcher *bot.Dispatcher
}

// NewMessageHandler 创建消息处理器
func NewMessageHandler(dispatcher *bot.Dispatcher) *MessageHandler {
	return &MessageHandler{dispatcher: dispatcher}
}

// MessageRequest 入站消息
type MessageRequest struct {
	AuthorID string `json:"author_id" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

// AttachmentResponse 出站附件
type AttachmentResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        string `json:"data,omitempty"` // base64
	URL         string `json:"url,omitempty"`
}

// ReplyResponse 单条回复
type ReplyResponse struct {
	Text        string               `json:"text"`
	Attachments []AttachmentResponse `json:"attachments,omitempty"`
}

// MessageResponse 处理结果
type MessageResponse struct {
	Handled bool            `json:"handled"`
	Replies []ReplyResponse `json:"replies"`
}

// Handle 处理一条入站消息
// @Summary 处理入站消息
// @Tags message
// @Accept json
// @Produce json
// @Param request body MessageRequest true "消息"
// @Success 200 {object} MessageResponse
// @Router /api/v1/messages [post]
func (h *MessageHandler) Handle(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    40001,
			"message": err.Error(),
		})
		return
	}

	// 鉴权开启时记录是哪个网关客户端递交的消息
	clientID, _ := ctxutil.GetClientID(c.Request.Context())
	log.Debug().
		Str("client_id", clientID).
		Str("author_id", req.AuthorID).
		Msg("inbound message")

	sink := newHTTPSink()
	handled := h.dispatcher.Dispatch(c.Request.Context(), bot.Message{
		AuthorID: req.AuthorID,
		Content:  req.Content,
	}, sink)

	replies := sink.collected()
	resp := MessageResponse{
		Handled: handled,
		Replies: make([]ReplyResponse, 0, len(replies)),
	}
	for _, reply := range replies {
		out := ReplyResponse{Text: reply.Text}
		for _, att := range reply.Attachments {
			outAtt := AttachmentResponse{
				Filename:    att.Filename,
				ContentType: att.ContentType,
				URL:         att.URL,
			}
			if len(att.Data) > 0 {
				outAtt.Data = base64.StdEncoding.EncodeToString(att.Data)
			}
			out.Attachments = append(out.Attachments, outAtt)
		}
		resp.Replies = append(resp.Replies, out)
	}

	c.JSON(http.StatusOK, resp)
}
