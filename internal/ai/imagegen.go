package ai

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	arkmodel "github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"

	"rushbot/internal/config"
)

// arkImageMIME Ark 图片生成默认输出格式
const arkImageMIME = "image/jpeg"

// ImageClient Ark 图片生成客户端
// 图片模态走火山引擎 Ark 的文生图接口，对话模型只产出文本。
type ImageClient struct {
	client    *arkruntime.Client
	model     string
	size      string
	watermark bool
}

// NewImageClient 创建图片生成客户端
func NewImageClient(cfg *config.ImageConfig) (*ImageClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("image api_key is required")
	}

	var opts []arkruntime.ConfigOption
	if cfg.BaseURL != "" {
		opts = append(opts, arkruntime.WithBaseUrl(cfg.BaseURL))
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = "doubao-seedream-3-0-t2i-250415"
	}

	size := cfg.Size
	if size == "" {
		size = "1024x1024"
	}

	return &ImageClient{
		client:    arkruntime.NewClientWithApiKey(cfg.APIKey, opts...),
		model:     modelName,
		size:      size,
		watermark: cfg.Watermark,
	}, nil
}

// Generate 生成一张图片，返回解码后的字节与声明的 MIME 类型
func (c *ImageClient) Generate(ctx context.Context, prompt string) ([]byte, string, error) {
	responseFormat := "b64_json"

	input := arkmodel.GenerateImagesRequest{
		Model:          c.model,
		Prompt:         prompt,
		Size:           &c.size,
		ResponseFormat: &responseFormat,
		Watermark:      &c.watermark,
	}

	output, err := c.client.GenerateImages(ctx, input)
	if err != nil {
		return nil, "", fmt.Errorf("ark GenerateImages call failed: %w", err)
	}

	if len(output.Data) == 0 {
		return nil, "", fmt.Errorf("no image data in response")
	}

	first := output.Data[0]
	if first.B64Json == nil {
		return nil, "", fmt.Errorf("no b64_json in response data")
	}

	imageData, err := base64.StdEncoding.DecodeString(*first.B64Json)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode base64 image data: %w", err)
	}

	return imageData, arkImageMIME, nil
}
