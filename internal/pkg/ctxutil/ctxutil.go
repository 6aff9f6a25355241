package ctxutil

import "context"

// clientIDKeyType 使用私有类型避免与其他 context key 冲突
type clientIDKeyType struct{}

var clientIDKey = clientIDKeyType{}

// WithClientID 将网关客户端 ID 注入到 context 中
// 说明：在认证中间件解析 JWT 成功后调用：
//
//	ctx := ctxutil.WithClientID(c.Request.Context(), claims.ClientID)
//	c.Request = c.Request.WithContext(ctx)
func WithClientID(ctx context.Context, clientID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, clientIDKey, clientID)
}

// GetClientID 从 context 中解析客户端 ID
func GetClientID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v := ctx.Value(clientIDKey)
	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
