package ai

import (
	"mime"
	"strings"
)

// 常见图片类型的规范扩展名
// stdlib mime 对 image/jpeg 可能返回 .jpe，这里先查表保证文件名稳定。
var wellKnownExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ExtensionByMIME 由声明的 MIME 类型推导文件扩展名，未知类型回退 "bin"
func ExtensionByMIME(mimeType string) string {
	mimeType = strings.TrimSpace(strings.ToLower(mimeType))
	if ext, ok := wellKnownExtensions[mimeType]; ok {
		return ext
	}

	exts, err := mime.ExtensionsByType(mimeType)
	if err == nil && len(exts) > 0 {
		return strings.TrimPrefix(exts[0], ".")
	}
	return "bin"
}
