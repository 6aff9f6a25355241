package model

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 对话角色
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// 轮次元数据类型
const (
	TurnTypeImage = "image"
)

// ChatTurn 对话轮次实体
// 追加写入，落库后不再修改；同一用户按 created_at 升序读取。
type ChatTurn struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Role      string             `bson:"role" json:"role"`
	Content   string             `bson:"content" json:"content"`
	Metadata  *TurnMetadata      `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// TurnMetadata 非文本轮次的结构化标注
// 二进制数据本身不入库，只记录可据此还原轮次性质的信息。
type TurnMetadata struct {
	Type     string `bson:"type" json:"type"`
	Filename string `bson:"filename,omitempty" json:"filename,omitempty"`
}

// IsText 是否为可进入模型上下文的纯文本轮次
func (t *ChatTurn) IsText() bool {
	return !strings.HasPrefix(t.Content, "[image:")
}

// AttachmentPlaceholder 生成附件占位内容，如 "[image:generated_0.png]"
func AttachmentPlaceholder(filename string) string {
	return fmt.Sprintf("[image:%s]", filename)
}
